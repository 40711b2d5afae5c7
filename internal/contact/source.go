package contact

import "context"

// Source supplies the contact snapshot the assistant reasons over. The database
// repository and the REST backend client both satisfy it.
type Source interface {
	ListContacts(ctx context.Context) ([]Summary, error)
}
