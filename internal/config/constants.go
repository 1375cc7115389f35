package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./weddingplanner.db"

	// DefaultStorageDir is where uploaded files are kept by the local file store
	DefaultStorageDir = "./uploads"

	DefaultGeminiModel = "gemini-2.5-flash"
)
