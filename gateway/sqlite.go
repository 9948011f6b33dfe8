package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// todoRecord is the todos table row.
type todoRecord struct {
	ID          string     `gorm:"primaryKey;type:text"`
	Seq         int64      `gorm:"index"`
	Title       string     `gorm:"not null;type:text"`
	Description string     `gorm:"type:text"`
	Status      string     `gorm:"index;not null;type:text"`
	Priority    string     `gorm:"index;not null;type:text"`
	Tags        string     `gorm:"not null;type:text"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (todoRecord) TableName() string {
	return "todos"
}

func recordFromTodo(t todo.Todo) (todoRecord, error) {
	if err := todo.ValidateTodo(&t); err != nil {
		return todoRecord{}, fmt.Errorf("invalid todo %s: %w", t.ID, err)
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return todoRecord{}, fmt.Errorf("encode tags: %w", err)
	}
	record := todoRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Tags:        string(encoded),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		record.DueDate = &due
	}
	return record, nil
}

func (r todoRecord) todo() (todo.Todo, error) {
	tags := []string{}
	if r.Tags != "" {
		if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
			return todo.Todo{}, fmt.Errorf("decode tags of %s: %w", r.ID, err)
		}
	}
	t := todo.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      todo.Status(r.Status),
		Priority:    todo.Priority(r.Priority),
		Tags:        tags,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		due := r.DueDate.UTC()
		t.DueDate = &due
	}
	return t, nil
}

// SQLiteRepository stores todos in a SQLite database through gorm.
type SQLiteRepository struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
//
// The pool holds a single connection; concurrent requests queue for it.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&todoRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database %s: %w", path, err)
	}
	return &SQLiteRepository{db: db}, nil
}

// sqliteDSN adds the write-lock and journal settings for file databases.
// Transactions take the write lock when they begin, and other processes
// sharing the file wait up to busyTimeoutMillis for it.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_txlock=immediate&_journal_mode=WAL&_busy_timeout=" + strconv.Itoa(busyTimeoutMillis)
}

const busyTimeoutMillis = 5000

// Count returns the number of stored todos.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&todoRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count todos: %w", err)
	}
	return int(count), nil
}

// List returns one page of matching todos, filtering and sorting in SQL.
func (r *SQLiteRepository) List(ctx context.Context, d query.Descriptor) (collection.ListResult, error) {
	perPage := d.ItemsPerPage
	if perPage < 1 {
		perPage = query.DefaultItemsPerPage
	}
	page := d.Page
	if page < 1 {
		page = 1
	}

	filtered := func() *gorm.DB {
		scope := r.db.WithContext(ctx).Model(&todoRecord{})
		if d.Status != nil && *d.Status != "" {
			scope = scope.Where("status = ?", string(*d.Status))
		}
		if d.Priority != nil && *d.Priority != "" {
			scope = scope.Where("priority = ?", string(*d.Priority))
		}
		if search := strings.ToLower(strings.TrimSpace(d.Search)); search != "" {
			pattern := "%" + escapeLike(search) + "%"
			scope = scope.Where(
				"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR EXISTS (SELECT 1 FROM json_each(todos.tags) WHERE LOWER(json_each.value) LIKE ? ESCAPE '\\'))",
				pattern, pattern, pattern,
			)
		}
		return scope
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return collection.ListResult{}, fmt.Errorf("count todos: %w", err)
	}

	var records []todoRecord
	err := filtered().
		Order(orderClause(d.SortBy, d.SortOrder)).
		Order("seq DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&records).Error
	if err != nil {
		return collection.ListResult{}, fmt.Errorf("list todos: %w", err)
	}

	items := make([]todo.Todo, 0, len(records))
	for _, record := range records {
		item, err := record.todo()
		if err != nil {
			return collection.ListResult{}, err
		}
		items = append(items, item)
	}
	return collection.ListResult{
		Items:        items,
		Total:        int(total),
		Page:         page,
		ItemsPerPage: perPage,
	}, nil
}

func orderClause(sortBy todo.SortKey, sortOrder todo.SortOrder) string {
	direction := "DESC"
	if sortOrder == todo.SortAsc {
		direction = "ASC"
	}
	switch sortBy {
	case todo.SortByDueDate:
		// NULL sorts as the earliest instant, as in todo.Compare.
		return "due_date IS NOT NULL " + direction + ", due_date " + direction
	case todo.SortByPriority:
		return "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END " + direction
	case todo.SortByTitle:
		return "LOWER(title) " + direction
	default:
		return "created_at " + direction
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Get returns the todo with the given id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (todo.Todo, error) {
	var record todoRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return todo.Todo{}, fmt.Errorf("todo %s: %w", id, ErrNotFound)
		}
		return todo.Todo{}, fmt.Errorf("find todo %s: %w", id, err)
	}
	return record.todo()
}

// Create inserts t.
func (r *SQLiteRepository) Create(ctx context.Context, t todo.Todo) error {
	record, err := recordFromTodo(t)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&todoRecord{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("create todo %s: %w", t.ID, err)
		}
		record.Seq = last + 1
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create todo %s: %w", t.ID, err)
		}
		return nil
	})
}

// Update merges patch into the stored record.
func (r *SQLiteRepository) Update(ctx context.Context, patch todo.Patch, now time.Time) (todo.Todo, error) {
	var updated todo.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record todoRecord
		if err := tx.First(&record, "id = ?", patch.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("todo %s: %w", patch.ID, ErrNotFound)
			}
			return fmt.Errorf("find todo %s: %w", patch.ID, err)
		}
		current, err := record.todo()
		if err != nil {
			return err
		}
		updated = patch.Apply(current)
		updated.ID = current.ID
		updated.UpdatedAt = stamp(updated.CreatedAt, now)

		next, err := recordFromTodo(updated)
		if err != nil {
			return err
		}
		next.Seq = record.Seq
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("update todo %s: %w", patch.ID, err)
		}
		return nil
	})
	if err != nil {
		return todo.Todo{}, err
	}
	return updated, nil
}

// Delete removes the todo with the given id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&todoRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
