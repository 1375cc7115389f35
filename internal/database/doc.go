// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, shared helpers
//	├── users/           # Accounts, roles and subscriptions
//	├── wedding/         # Profile, budget, expenses, guests, seating tables
//	├── blog/            # Blog posts and tags
//	├── websites/        # Wedding websites and RSVP submissions
//	├── visionboard/     # Vision board preferences and items
//	├── uploads/         # Uploaded file metadata
//	├── payments/        # Checkout sessions
//	├── audit/           # Audit events
//	└── settings/        # Application settings
//
// # Ownership
//
// Every per-user table carries a user_id column. Repository methods that read
// or write such rows take the owner id and scope their queries by it, so a row
// owned by someone else behaves exactly like a missing row and yields
// gorm.ErrRecordNotFound.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./weddingplanner.db")
//
//	weddingRepo := wedding.NewRepository(db.DB)
//	guests, err := weddingRepo.ListGuests(userID, wedding.GuestFilter{Status: entities.RSVPAttending})
//
// Compile-time checks that repositories satisfy the HTTP store interfaces live
// in internal/interfaces.
package database
