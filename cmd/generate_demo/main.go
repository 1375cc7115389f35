// Command generate_demo creates a demo database with a sample wedding plan.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
//
// Serve it with DEMO_MODE=true DATABASE_PATH=./demo/demo.db to get a
// read-only showcase.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/weddingplanner/internal/blog"
	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/database"
	dbblog "github.com/mrlokans/weddingplanner/internal/database/blog"
	"github.com/mrlokans/weddingplanner/internal/database/visionboard"
	"github.com/mrlokans/weddingplanner/internal/database/websites"
	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/logging"
	"github.com/mrlokans/weddingplanner/internal/website"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	logger := logging.Setup(config.Log{Level: "info", Format: "text"})
	if err := generate(*dbPath, time.Now(), logger); err != nil {
		logger.Error("failed to generate demo database", "error", err)
		os.Exit(1)
	}
	logger.Info("demo database ready", "path", *dbPath)
}

// generate recreates the database at dbPath and fills it for the
// single-user account. Dates are relative to now.
func generate(dbPath string, now time.Time, logger *slog.Logger) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing demo database: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	defer db.Close()

	const userID = 0
	weddingDate := now.AddDate(0, 7, 0).Truncate(24 * time.Hour)
	plan := wedding.NewRepository(db.DB)

	if err := plan.SaveProfile(&entities.WeddingProfile{
		UserID:        userID,
		PartnerOne:    "Elizabeth Bennet",
		PartnerTwo:    "Fitzwilliam Darcy",
		WeddingDate:   &weddingDate,
		VenueName:     "Pemberley House",
		Location:      "Derbyshire",
		GuestEstimate: 80,
		Style:         "classic",
	}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	if _, err := plan.UpdateBudget(userID, 30000, "GBP"); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	for _, e := range demoExpenses(now) {
		e.UserID = userID
		if err := plan.CreateExpense(&e); err != nil {
			return fmt.Errorf("save expense %s: %w", e.Vendor, err)
		}
	}
	logger.Info("saved budget", "expenses", len(demoExpenses(now)))

	tables := []entities.SeatingTable{
		{UserID: userID, Name: "Family", Capacity: 8, Shape: "round"},
		{UserID: userID, Name: "Friends", Capacity: 8, Shape: "round"},
		{UserID: userID, Name: "Head table", Capacity: 6, Shape: "rectangle"},
	}
	for i := range tables {
		if err := plan.CreateTable(&tables[i]); err != nil {
			return fmt.Errorf("save table %s: %w", tables[i].Name, err)
		}
	}

	guests := demoGuests(now)
	for i := range guests {
		guests[i].UserID = userID
	}
	if err := plan.CreateGuests(guests); err != nil {
		return fmt.Errorf("save guests: %w", err)
	}
	// Seat attending guests round-robin; capacities above fit the demo list.
	seat := 0
	for _, g := range guests {
		if g.RSVPStatus != entities.RSVPAttending {
			continue
		}
		tableID := tables[seat%2].ID
		if err := plan.AssignGuestToTable(userID, g.ID, &tableID); err != nil {
			return fmt.Errorf("seat guest %s: %w", g.FullName(), err)
		}
		seat++
	}
	logger.Info("saved guests", "guests", len(guests), "tables", len(tables), "seated", seat)

	board := visionboard.NewRepository(db.DB)
	if err := board.SavePreferences(&entities.VisionBoardPreference{UserID: userID, Style: "romantic", Season: "summer", Colors: []string{"ivory", "sage", "blush"}, Themes: []string{"garden"}}); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	for _, item := range demoBoard() {
		item.UserID = userID
		if err := board.CreateItem(&item); err != nil {
			return fmt.Errorf("save vision item: %w", err)
		}
	}

	catalog, err := website.LoadCatalog()
	if err != nil {
		return err
	}
	theme, _ := catalog.Get("garden")
	deadline := weddingDate.AddDate(0, -1, 0)
	site := &entities.WeddingWebsite{
		UserID:       userID,
		Slug:         "lizzy-and-darcy",
		Title:        "Elizabeth & Fitzwilliam",
		Theme:        theme.ID,
		Headline:     "We're getting married at Pemberley",
		Story:        "We met at a country ball and did not get along at all. Much has changed since.",
		EventDate:    &weddingDate,
		VenueName:    "Pemberley House",
		VenueAddress: "Pemberley, Derbyshire",
		Sections:     website.DefaultSections(theme),
		RSVPEnabled:  true,
		RSVPDeadline: &deadline,
	}
	sites := websites.NewRepository(db.DB)
	if err := sites.Save(site); err != nil {
		return fmt.Errorf("save website: %w", err)
	}
	if err := website.ValidateForPublish(site, catalog); err != nil {
		return err
	}
	if _, err := sites.SetPublished(userID, true, now); err != nil {
		return fmt.Errorf("publish website: %w", err)
	}
	logger.Info("published website", "slug", site.Slug)

	posts := dbblog.NewRepository(db.DB)
	for _, in := range demoPosts() {
		if err := in.Normalize(); err != nil {
			return fmt.Errorf("post %q: %w", in.Title, err)
		}
		post := &entities.BlogPost{AuthorID: userID, Slug: in.Slug}
		in.Apply(post)
		if err := blog.ApplyStatus(post, entities.PostStatusPublished, now); err != nil {
			return err
		}
		if err := posts.CreatePost(post, in.Tags); err != nil {
			return fmt.Errorf("save post %q: %w", in.Title, err)
		}
	}
	logger.Info("saved blog posts", "count", len(demoPosts()))
	return nil
}

func demoExpenses(now time.Time) []entities.Expense {
	due := now.AddDate(0, 2, 0)
	return []entities.Expense{
		{Category: "venue", Vendor: "Pemberley House", EstimatedCost: 12000, ActualCost: 12500, PaidAmount: 5000, DueDate: &due},
		{Category: "catering", Vendor: "Lambton Inn", EstimatedCost: 7000, ActualCost: 6800, PaidAmount: 2000},
		{Category: "photography", Vendor: "Meryton Studio", EstimatedCost: 2500},
		{Category: "flowers", Vendor: "Longbourn Gardens", EstimatedCost: 1200, ActualCost: 1100, PaidAmount: 1100},
		{Category: "attire", Vendor: "Bath Dressmakers", EstimatedCost: 3000, ActualCost: 3200, PaidAmount: 3200},
		{Category: "music", Vendor: "Netherfield Quartet", EstimatedCost: 1500},
	}
}

func demoGuests(now time.Time) []entities.Guest {
	answered := now.AddDate(0, 0, -3)
	attending := func(first, last, email, group, side, meal string) entities.Guest {
		return entities.Guest{
			FirstName: first, LastName: last, Email: email, Group: group, Side: side,
			RSVPStatus: entities.RSVPAttending, MealPreference: meal, RespondedAt: &answered,
		}
	}
	guests := []entities.Guest{
		attending("Jane", "Bennet", "jane@longbourn.example", "family", "bride", "fish"),
		attending("Mary", "Bennet", "", "family", "bride", "vegetarian"),
		attending("Georgiana", "Darcy", "georgiana@pemberley.example", "family", "groom", "chicken"),
		attending("Charles", "Bingley", "charles@netherfield.example", "friends", "groom", "beef"),
		attending("Charlotte", "Lucas", "charlotte@lucaslodge.example", "friends", "bride", "fish"),
		attending("Edward", "Gardiner", "", "family", "bride", "beef"),
		{FirstName: "Kitty", LastName: "Bennet", Group: "family", Side: "bride", RSVPStatus: entities.RSVPMaybe, RespondedAt: &answered},
		{FirstName: "Lydia", LastName: "Wickham", Group: "family", Side: "bride", RSVPStatus: entities.RSVPDeclined, RespondedAt: &answered},
		{FirstName: "Catherine", LastName: "de Bourgh", Email: "lady.catherine@rosings.example", Group: "family", Side: "groom"},
		{FirstName: "William", LastName: "Collins", Group: "friends", Side: "bride"},
	}
	guests[3].PlusOneAllowed = true
	guests[3].PlusOneName = "Caroline Bingley"
	guests[3].PlusOneAttending = true
	return guests
}

func demoBoard() []entities.VisionBoardItem {
	return []entities.VisionBoardItem{
		{ImageURL: "https://images.example.com/garden-arch.jpg", Source: entities.VisionSourceLink, Caption: "Rose arch for the ceremony", Category: "decor"},
		{ImageURL: "https://images.example.com/sage-linen.jpg", Source: entities.VisionSourceLink, Caption: "Sage linen and candles", Category: "tables"},
		{ImageURL: "https://images.example.com/lace-gown.jpg", Source: entities.VisionSourceLink, Caption: "Regency lace", Category: "attire"},
	}
}

func demoPosts() []blog.Input {
	return []blog.Input{
		{
			Title:    "How to Build a Guest List Without Losing Friends",
			Slug:     "guest-list-without-losing-friends",
			Category: "planning",
			Tags:     []string{"guests", "etiquette"},
			Content: "## Start with the venue\n\nYour venue capacity is the hard limit. " +
				"Split the list into must-invite, should-invite and nice-to-have, then cut from the bottom.\n\n" +
				"## Plus-ones\n\nDecide the rule once and apply it to everyone.",
		},
		{
			Title:    "Seating Charts Made Simple",
			Slug:     "seating-charts-made-simple",
			Category: "planning",
			Tags:     []string{"seating"},
			Content: "Seat guests by group first. Keep round tables below ten people so conversation flows.\n\n" +
				"Wait for RSVPs before you finalize anything: declined guests free up seats.",
		},
	}
}
