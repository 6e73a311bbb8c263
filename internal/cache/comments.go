package cache

import (
	"database/sql"
	"time"

	"github.com/fragmede/wpnews/internal/news"
)

// GetComments returns the cached comment list of itemID. ok is false on a
// miss or when the list is older than ttl.
func (d *DB) GetComments(itemID int64, ttl time.Duration) ([]news.Comment, bool, error) {
	var fetchedAt int64
	err := d.db.QueryRow(`SELECT fetched_at FROM comment_lists WHERE item_id = ?`, itemID).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Since(time.Unix(fetchedAt, 0)) >= ttl {
		return nil, false, nil
	}

	rows, err := d.db.Query(`SELECT id, parent_id, author, body, posted_unix
		FROM comments WHERE item_id = ? ORDER BY id`, itemID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	out := []news.Comment{}
	for rows.Next() {
		c := news.Comment{ItemID: itemID}
		var author, body sql.NullString
		var posted sql.NullInt64
		if err := rows.Scan(&c.ID, &c.ParentID, &author, &body, &posted); err != nil {
			return nil, false, err
		}
		c.Author = author.String
		c.Body = body.String
		if posted.Valid {
			c.PostedAt = time.Unix(posted.Int64, 0).UTC()
		}
		out = append(out, c)
	}
	return out, true, rows.Err()
}

// PutComments replaces the cached comment list of itemID.
func (d *DB) PutComments(itemID int64, comments []news.Comment) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM comment_lists WHERE item_id = ?`, itemID); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO comment_lists (item_id, fetched_at) VALUES (?, ?)`,
		itemID, time.Now().Unix()); err != nil {
		return err
	}
	for _, c := range comments {
		_, err := tx.Exec(`INSERT OR REPLACE INTO comments
			(id, item_id, parent_id, author, body, posted_unix) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, itemID, c.ParentID, nullStr(c.Author), nullStr(c.Body), nullTime(c.PostedAt))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InvalidateComments drops the cached comment list of itemID.
func (d *DB) InvalidateComments(itemID int64) error {
	_, err := d.db.Exec(`DELETE FROM comment_lists WHERE item_id = ?`, itemID)
	return err
}
