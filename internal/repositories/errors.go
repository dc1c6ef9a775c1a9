package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrVideoNotFound      = errors.New("video not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrEventNotFound      = errors.New("information event not found")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrUserNotFound       = errors.New("user not found")

	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

const mysqlDuplicateEntry = 1062

// IsDuplicateKey recognises unique-violation errors from every supported
// driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func duplicate(err error) error {
	if IsDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// Page describes a 1-based page request.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.PageSize <= 0 {
		return db
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return db.Offset((page - 1) * p.PageSize).Limit(p.PageSize)
}

func likePattern(q string) string {
	return "%" + strings.TrimSpace(q) + "%"
}
