package utils

const (
	StorageProviderGCS    = "gcs"
	StorageProviderMemory = "memory"
)
