package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"zando/internal/domain"
)

// UserRepo remembers which backend identity is signed in on which sid.
type UserRepo struct {
	DB   *sqlx.DB
	Seal *Sealer
}

func NewUserRepo(db *sqlx.DB, seal *Sealer) *UserRepo { return &UserRepo{DB: db, Seal: seal} }

type sessionRow struct {
	UserID      int64  `db:"user_id"`
	Name        string `db:"name"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	Email       string `db:"email"`
	Role        string `db:"role"`
	TokenSealed []byte `db:"token_sealed"`
	ExpiresAt   int64  `db:"expires_at"`
}

func (r *UserRepo) BindSession(sid string, u *domain.User) error {
	sealed, err := r.Seal.Seal([]byte(u.Token))
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(`INSERT INTO sessions(id,user_id,name,first_name,last_name,email,role,token_sealed,expires_at,last_seen)
                        VALUES(?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
                        ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,name=excluded.name,
                          first_name=excluded.first_name,last_name=excluded.last_name,email=excluded.email,
                          role=excluded.role,token_sealed=excluded.token_sealed,expires_at=excluded.expires_at,
                          last_seen=CURRENT_TIMESTAMP`,
		sid, u.ID, u.Name, u.FirstName, u.LastName, u.Email, u.Role, sealed, u.ExpiresAt.Unix())
	return err
}

// SessionUser returns the identity bound to sid, or sql.ErrNoRows.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var row sessionRow
	err := r.DB.Get(&row, `
      SELECT user_id,name,first_name,last_name,email,role,token_sealed,expires_at
      FROM sessions WHERE id=?`, sid)
	if err != nil {
		return nil, err
	}
	tok, err := r.Seal.Open(row.TokenSealed)
	if err != nil {
		// a token sealed under another key is as good as no session
		_ = r.UnbindSession(sid)
		return nil, sql.ErrNoRows
	}
	return &domain.User{
		ID:        row.UserID,
		Name:      row.Name,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Role:      row.Role,
		Token:     string(tok),
		ExpiresAt: time.Unix(row.ExpiresAt, 0),
	}, nil
}

func (r *UserRepo) Touch(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id=?`, sid)
	return err
}

// PurgeExpired drops every session whose token expired before now and
// returns the affected sids.
func (r *UserRepo) PurgeExpired(now time.Time) ([]string, error) {
	tx, err := r.DB.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var sids []string
	if err := tx.Select(&sids, `SELECT id FROM sessions WHERE expires_at<=?`, now.Unix()); err != nil {
		return nil, err
	}
	if len(sids) > 0 {
		query, args, err := sqlx.In(`DELETE FROM sessions WHERE id IN (?)`, sids)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return nil, err
		}
	}
	return sids, tx.Commit()
}

// IsNotFound reports whether err means the sid has no identity.
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
