package termstore

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OptionModel is a named configuration value in the options table.
type OptionModel struct {
	bun.BaseModel `bun:"table:options,alias:o"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func optionHandlers() repository.ModelHandlers[*OptionModel] {
	return repository.ModelHandlers[*OptionModel]{
		NewRecord:     func() *OptionModel { return &OptionModel{} },
		GetID:         func(*OptionModel) uuid.UUID { return uuid.Nil },
		SetID:         func(*OptionModel, uuid.UUID) {},
		GetIdentifier: func() string { return "name" },
	}
}

// OptionBackend keeps one settings record in a row of the options table.
// It satisfies settings.Backend.
type OptionBackend struct {
	db      bun.IDB
	options repository.Repository[*OptionModel]
	name    string
	now     func() time.Time
}

// NewOptionBackend stores the record under name. The options table must
// exist, see CreateSchema.
func NewOptionBackend(db *bun.DB, name string) *OptionBackend {
	return &OptionBackend{
		db:      db,
		options: repository.NewRepository[*OptionModel](db, optionHandlers()),
		name:    name,
		now:     time.Now,
	}
}

// ReadRecord returns the stored value; a missing row is not an error.
func (b *OptionBackend) ReadRecord(ctx context.Context) ([]byte, bool, error) {
	rows, _, err := b.options.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident("name"), b.name).Limit(1)
	})
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return []byte(rows[0].Value), true, nil
}

// WriteRecord replaces the stored value.
func (b *OptionBackend) WriteRecord(ctx context.Context, data []byte) error {
	row := &OptionModel{
		Name:      b.name,
		Value:     string(data),
		UpdatedAt: b.now().UTC(),
	}
	_, err := b.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
