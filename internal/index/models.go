package index

import "vidup/internal/scene"

// FileID is the store-assigned identifier of an indexed file.
type FileID int64

// FileStatus records whether a file's scene list is complete.
type FileStatus int

const (
	StatusUnanalyzed FileStatus = 0
	StatusAnalyzed   FileStatus = 1
)

func (s FileStatus) String() string {
	switch s {
	case StatusUnanalyzed:
		return "unanalyzed"
	case StatusAnalyzed:
		return "analyzed"
	default:
		return "unknown"
	}
}

// FileEntry is one row of the files table.
type FileEntry struct {
	ID     FileID     `json:"id"`
	Name   string     `json:"name"`
	Status FileStatus `json:"status"`
}

// Scene binds a scene fingerprint to the file it was observed in.
type Scene struct {
	ID     scene.ID
	FileID FileID
}

// HashCount is a fingerprint shared by Count scene rows.
type HashCount struct {
	ID    scene.ID
	Count int
}

// Health summarizes the index for diagnostics.
type Health struct {
	Driver        string `json:"driver"`
	Location      string `json:"location"`
	Initialized   bool   `json:"initialized"`
	SchemaVersion int    `json:"schema_version"`
	Files         int    `json:"files"`
	Analyzed      int    `json:"analyzed"`
	Scenes        int    `json:"scenes"`
}
