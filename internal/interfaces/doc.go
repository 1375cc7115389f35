// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
// Controllers in internal/http declare the narrow store they need
// (internal/http/stores.go). The repositories under internal/database
// implement them:
//
//   - ProfileStore, BudgetStore, GuestStore, TableStore: internal/database/wedding
//   - VisionBoardStore: internal/database/visionboard
//   - UploadStore: internal/database/uploads
//   - BlogStore: internal/database/blog
//   - WebsiteStore, RSVPLister: internal/database/websites
//   - UserAdminStore: internal/database/users
//   - SettingsStore: internal/database/settings
//
// ## Background Work Interfaces
//
//   - tasks.Enqueuer and http.TaskQueue: the backlite client (internal/tasks/client.go)
//   - tasks.ImageSource: vision item image loading (internal/tasks/analyze.go)
//   - scheduler.Enqueuer: cron-triggered cleanup (internal/scheduler/cleanup.go)
//
// ## External Service Interfaces
//
//   - gemini.ImageAnalyzer, gemini.ContentGenerator: Gemini models (internal/gemini)
//   - http.ImageSearcher, payments.CheckoutFunctions: the serverless function
//     client (internal/functions)
//   - storage.FileStore: uploaded file storage (internal/storage)
//
// # Adding a New File Store
//
// To store uploads somewhere other than the local disk:
//
//  1. Create a provider in internal/storage/providers/
//
//     type Store struct { bucket string }
//
//     func (s *Store) Save(ctx context.Context, prefix, contentType string, r io.Reader) (string, error)
//     func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error)
//     func (s *Store) Delete(ctx context.Context, key string) error
//     func (s *Store) URL(key string) string
//
//  2. Add a compile-time check to checks.go
//
//  3. Select it in internal/entrypoint
//
// # Adding a New Background Task
//
//  1. Define the task and its queue config in internal/tasks/
//
//     type SendReminderTask struct { GuestID uint `json:"guest_id"` }
//
//     func (t SendReminderTask) Config() backlite.QueueConfig
//
//  2. Write a processor and register it in tasks.Queues
//
//  3. Enqueue it through http.TaskQueue or the scheduler
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
