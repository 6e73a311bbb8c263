package cache

import (
	"database/sql"
	"time"

	"github.com/fragmede/wpnews/internal/news"
)

// GetItem retrieves a cached item. Returns (item, isFresh, error).
// isFresh indicates whether the item is within its TTL.
// Returns nil item on cache miss.
func (d *DB) GetItem(id int64, ttl time.Duration) (*news.Item, bool, error) {
	row := d.db.QueryRow(`SELECT id, title, link, body, excerpt, author, published_unix, fetched_at
		FROM items WHERE id = ?`, id)

	var item news.Item
	var title, link, body, excerpt, author sql.NullString
	var published sql.NullInt64
	var fetchedAt int64

	err := row.Scan(&item.ID, &title, &link, &body, &excerpt, &author, &published, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	item.Title = title.String
	item.Link = link.String
	item.Body = body.String
	item.Excerpt = excerpt.String
	item.Author = author.String
	if published.Valid {
		item.PublishedAt = time.Unix(published.Int64, 0).UTC()
	}

	isFresh := time.Since(time.Unix(fetchedAt, 0)) < ttl
	return &item, isFresh, nil
}

// PutItems stores items in the cache.
func (d *DB) PutItems(items []news.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, it := range items {
		_, err := tx.Exec(`INSERT OR REPLACE INTO items
			(id, title, link, body, excerpt, author, published_unix, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, nullStr(it.Title), nullStr(it.Link), nullStr(it.Body), nullStr(it.Excerpt),
			nullStr(it.Author), nullTime(it.PublishedAt), now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
