package core

import "context"

// Store hands out sessions scoped to a caller credential. The credential is
// the raw value of the inbound authorization header.
type Store interface {
	Session(ctx context.Context, credential string) (StoreSession, error)
	Ping(ctx context.Context) error
}

type StoreSession interface {
	SyllabusWriter
	Identity(ctx context.Context) (Identity, error)
	GetSyllabus(ctx context.Context, id string) (Syllabus, error)
}

type SyllabusWriter interface {
	InsertSyllabus(ctx context.Context, s Syllabus) (Syllabus, error)
	InsertTopics(ctx context.Context, topics []Topic) ([]Topic, error)
	DeleteSyllabus(ctx context.Context, id string) error
}

// Transactor is implemented by sessions whose backing store can run the
// syllabus and topic writes as one transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(w SyllabusWriter) error) error
}
