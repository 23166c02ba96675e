package types

import (
	"time"

	"github.com/google/uuid"
)

// Session is one upload-to-chat lifecycle: a fixed document set and a fixed
// role, created at ingestion time. Role and Filenames never change after
// creation.
type Session struct {
	ID        uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	Filenames []string  `json:"filenames"`
	CreatedAt time.Time `json:"created_at"`
}

// ChunkMeta is stamped onto every chunk of a document at ingestion time and
// travels with the chunk through retrieval into citations.
type ChunkMeta struct {
	SourceFile   string   `json:"source_file"`
	DocType      string   `json:"doc_type"`
	DocTypeScore *float64 `json:"doc_type_score,omitempty"`
}

// Chunk is a bounded, overlapping text span of one document, owned by a
// session. ID is unique within the session (doc<d>_chunk<c>).
type Chunk struct {
	SessionID uuid.UUID
	ID        string
	Content   string
	Meta      ChunkMeta
	Embedding []float32
	Distance  float64
}

// Turn is one entry of a session's conversation history. Assistant turns
// carry the sources the answer was grounded on; user turns have none.
type Turn struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Sources []Source `json:"sources,omitempty"`
}

// Source is a single cited document, deduplicated by filename.
type Source struct {
	SourceFile   string   `json:"source_file"`
	DocType      string   `json:"doc_type"`
	DocTypeScore *float64 `json:"doc_type_score,omitempty"`
}

// ChatResponse is the answer to one question plus its citations.
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

const (
	TurnUser      = "user"
	TurnAssistant = "assistant"
)
