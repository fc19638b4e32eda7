package store

import "time"

// Favorite is a chat pinned by the user within one gateway session.
type Favorite struct {
	Session   string
	ChatID    string
	CreatedAt int64
}

// AddFavorite pins chatID for session. Returns false when it was already pinned.
func (db *DB) AddFavorite(session, chatID string) (bool, error) {
	res, err := db.Exec(`
		INSERT INTO favorites (session, chat_id, seq, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM favorites WHERE session = ?), ?)
		ON CONFLICT(session, chat_id) DO NOTHING`,
		session, chatID, session, time.Now().UnixMilli())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RemoveFavorite unpins chatID. Returns false when it was not pinned.
func (db *DB) RemoveFavorite(session, chatID string) (bool, error) {
	res, err := db.Exec(`DELETE FROM favorites WHERE session = ? AND chat_id = ?`, session, chatID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IsFavorite reports whether chatID is pinned for session.
func (db *DB) IsFavorite(session, chatID string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM favorites WHERE session = ? AND chat_id = ?`, session, chatID).Scan(&n)
	return n > 0, err
}

// ListFavorites returns the pinned chat ids of session in insertion order.
func (db *DB) ListFavorites(session string) ([]string, error) {
	rows, err := db.Query(`SELECT chat_id FROM favorites WHERE session = ? ORDER BY seq`, session)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
