package attendance

import "context"

type AttendanceRepository interface {
	GetByKey(ctx context.Context, key string) (Record, error)
	// GetByKeyForUpdate reads the record and locks it until the surrounding
	// transaction ends.
	GetByKeyForUpdate(ctx context.Context, key string) (Record, error)
	// Create inserts r. It returns ErrRecordExists without failing the
	// surrounding transaction when the key is already taken.
	Create(ctx context.Context, r Record) error
	Update(ctx context.Context, key string, u RecordUpdate) error
}
