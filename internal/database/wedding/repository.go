// Package wedding provides database operations for the planning data a couple
// owns: the wedding profile, budget and expenses, guests and seating tables.
//
// Every method is scoped by the owner's user id.
package wedding

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/database"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

const defaultCurrency = "USD"

// Repository handles wedding planning database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new wedding repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Profile ---

func (r *Repository) GetProfile(userID uint) (*entities.WeddingProfile, error) {
	var profile entities.WeddingProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile creates the user's profile or replaces the existing one.
func (r *Repository) SaveProfile(profile *entities.WeddingProfile) error {
	existing, err := r.GetProfile(profile.UserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile.ID = 0
		return r.db.Create(profile).Error
	case err != nil:
		return err
	}
	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	return database.UpdateOwned(r.db, profile, profile.UserID)
}

// --- Budget ---

// GetOrCreateBudget returns the user's budget, creating an empty one on first access.
func (r *Repository) GetOrCreateBudget(userID uint) (*entities.Budget, error) {
	budget := entities.Budget{UserID: userID, Currency: defaultCurrency}
	err := r.db.Where("user_id = ?", userID).FirstOrCreate(&budget).Error
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *Repository) UpdateBudget(userID uint, total float64, currency string) (*entities.Budget, error) {
	budget, err := r.GetOrCreateBudget(userID)
	if err != nil {
		return nil, err
	}
	if currency != "" {
		budget.Currency = strings.ToUpper(currency)
	}
	budget.TotalAmount = total
	if err := r.db.Model(budget).Updates(map[string]any{
		"total_amount": budget.TotalAmount,
		"currency":     budget.Currency,
	}).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

// --- Expenses ---

// ExpenseFilter narrows ListExpenses. Sort is one of "due_date", "amount",
// "category" or "created" (default).
type ExpenseFilter struct {
	Category string
	Sort     string
}

func (r *Repository) ListExpenses(userID uint, filter ExpenseFilter) ([]entities.Expense, error) {
	var expenses []entities.Expense
	q := r.db.Where("user_id = ?", userID)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	switch filter.Sort {
	case "due_date":
		q = q.Order("due_date IS NULL, due_date ASC")
	case "amount":
		q = q.Order("CASE WHEN actual_cost > 0 THEN actual_cost ELSE estimated_cost END DESC")
	case "category":
		q = q.Order("category ASC")
	default:
		q = q.Order("created_at DESC")
	}

	err := q.Order("id ASC").Find(&expenses).Error
	return expenses, err
}

func (r *Repository) GetExpense(userID, id uint) (*entities.Expense, error) {
	var expense entities.Expense
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *Repository) CreateExpense(expense *entities.Expense) error {
	return r.db.Create(expense).Error
}

func (r *Repository) UpdateExpense(expense *entities.Expense) error {
	return database.UpdateOwned(r.db, expense, expense.UserID)
}

func (r *Repository) DeleteExpense(userID, id uint) error {
	return deleteOwned(r.db, &entities.Expense{}, userID, id)
}

// --- Guests ---

// GuestFilter narrows ListGuests. Zero values mean "any".
type GuestFilter struct {
	Status     entities.RSVPStatus
	Group      string
	TableID    *uint
	Unassigned bool
	Search     string
}

func (r *Repository) ListGuests(userID uint, filter GuestFilter) ([]entities.Guest, error) {
	var guests []entities.Guest
	q := r.db.Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("rsvp_status = ?", filter.Status)
	}
	if filter.Group != "" {
		q = q.Where("guest_group = ?", filter.Group)
	}
	if filter.TableID != nil {
		q = q.Where("table_id = ?", *filter.TableID)
	}
	if filter.Unassigned {
		q = q.Where("table_id IS NULL")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	err := q.Order("last_name ASC, first_name ASC, id ASC").Find(&guests).Error
	return guests, err
}

func (r *Repository) GetGuest(userID, id uint) (*entities.Guest, error) {
	var guest entities.Guest
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// FindGuestByEmail matches case-insensitively.
func (r *Repository) FindGuestByEmail(userID uint, email string) (*entities.Guest, error) {
	var guest entities.Guest
	err := r.db.Where("user_id = ? AND email <> '' AND LOWER(email) = ?", userID, strings.ToLower(strings.TrimSpace(email))).
		Order("id ASC").First(&guest).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// FindGuestByName matches first and last name exactly, ignoring case.
func (r *Repository) FindGuestByName(userID uint, firstName, lastName string) (*entities.Guest, error) {
	var guest entities.Guest
	err := r.db.Where("user_id = ? AND LOWER(first_name) = ? AND LOWER(last_name) = ?",
		userID, strings.ToLower(strings.TrimSpace(firstName)), strings.ToLower(strings.TrimSpace(lastName))).
		Order("id ASC").First(&guest).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *Repository) CreateGuest(guest *entities.Guest) error {
	return r.db.Create(guest).Error
}

// CreateGuests inserts guests in one transaction.
func (r *Repository) CreateGuests(guests []entities.Guest) error {
	if len(guests) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(guests, 100).Error
	})
}

func (r *Repository) UpdateGuest(guest *entities.Guest) error {
	return database.UpdateOwned(r.db, guest, guest.UserID)
}

func (r *Repository) DeleteGuest(userID, id uint) error {
	return deleteOwned(r.db, &entities.Guest{}, userID, id)
}

// AssignGuestToTable sets the guest's table. A nil tableID unseats the guest.
func (r *Repository) AssignGuestToTable(userID, guestID uint, tableID *uint) error {
	result := r.db.Model(&entities.Guest{}).
		Where("id = ? AND user_id = ?", guestID, userID).
		Update("table_id", tableID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) CountGuests() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Guest{}).Count(&count).Error
	return count, err
}

// --- Seating tables ---

func (r *Repository) ListTables(userID uint) ([]entities.SeatingTable, error) {
	var tables []entities.SeatingTable
	err := r.db.Where("user_id = ?", userID).
		Preload("Guests", func(db *gorm.DB) *gorm.DB {
			return db.Order("last_name ASC, first_name ASC")
		}).
		Order("name ASC, id ASC").
		Find(&tables).Error
	return tables, err
}

func (r *Repository) GetTable(userID, id uint) (*entities.SeatingTable, error) {
	var table entities.SeatingTable
	err := r.db.Where("id = ? AND user_id = ?", id, userID).Preload("Guests").First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *Repository) CreateTable(table *entities.SeatingTable) error {
	return r.db.Omit("Guests").Create(table).Error
}

func (r *Repository) UpdateTable(table *entities.SeatingTable) error {
	return database.UpdateOwned(r.db, table, table.UserID)
}

// DeleteTable removes the table and unseats everyone assigned to it.
func (r *Repository) DeleteTable(userID, id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteOwned(tx, &entities.SeatingTable{}, userID, id); err != nil {
			return err
		}
		return tx.Model(&entities.Guest{}).
			Where("user_id = ? AND table_id = ?", userID, id).
			Update("table_id", nil).Error
	})
}

func deleteOwned(db *gorm.DB, model any, userID, id uint) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
