package notification

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgInsertNotification = `INSERT INTO %s.notifications(json_data) VALUES($1)`
	pgUpdateNotification = `UPDATE %s.notifications
		SET json_data = $2
		WHERE (json_data->>'id')::BIGINT = $1::BIGINT`

	pgInsertPreference = `INSERT INTO %s.notification_preferences(json_data) VALUES($1)`
	pgUpdatePreference = `UPDATE %s.notification_preferences
		SET json_data = $2
		WHERE (json_data->>'user_id')::BIGINT = $1::BIGINT`

	pgListNotifications = `SELECT json_data FROM %s.notifications
		%s`
	pgListPreferences = `SELECT json_data FROM %s.notification_preferences
		WHERE (json_data->>'user_id')::BIGINT = $1::BIGINT`

	pgClauseBefore       = `(json_data->>'created_at')::TIMESTAMP < ?`
	pgClauseIDs          = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseKinds        = `(json_data->>'kind')::TEXT IN (?)`
	pgClauseRead         = `(json_data->>'read')::BOOL = ?::BOOL`
	pgClauseRecipientIDs = `(json_data->>'recipient_id')::BIGINT IN (?)`

	pgOrderCreatedAt = `ORDER BY (json_data->>'created_at')::TIMESTAMP DESC`

	pgIndexRecipient = `
		CREATE INDEX
			%s
		ON
			%s.notifications(((json_data->>'recipient_id')::BIGINT))`
	pgIndexPreferenceUser = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.notification_preferences(((json_data->>'user_id')::BIGINT))`

	pgCreateSchema             = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateNotificationsTable = `CREATE TABLE IF NOT EXISTS %s.notifications
		(json_data JSONB NOT NULL)`
	pgCreatePreferencesTable = `CREATE TABLE IF NOT EXISTS %s.notification_preferences
		(json_data JSONB NOT NULL)`
	pgDropNotificationsTable = `DROP TABLE IF EXISTS %s.notifications`
	pgDropPreferencesTable   = `DROP TABLE IF EXISTS %s.notification_preferences`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Put(ns string, n *Notification) (*Notification, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	var (
		now = time.Now().UTC()

		params []interface{}
		query  string
	)

	if n.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		n.ID = id
		n.CreatedAt = now
		n.UpdatedAt = now

		query = wrapNamespace(pgInsertNotification, ns)
	} else {
		nl, err := s.Query(ns, QueryOptions{
			IDs: []uint64{n.ID},
		})
		if err != nil {
			return nil, err
		}

		if len(nl) == 0 {
			return nil, ErrNotFound
		}

		n.CreatedAt = nl[0].CreatedAt
		n.UpdatedAt = now

		params = []interface{}{n.ID}
		query = wrapNamespace(pgUpdateNotification, ns)
	}

	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(query, append(params, data)...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			_, err = s.db.Exec(query, append(params, data)...)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	return n, nil
}

func (s *pgService) PreferenceGet(ns string, userID uint64) (*Preference, error) {
	query := wrapNamespace(pgListPreferences, ns)

	var raw []byte

	err := s.db.Get(&raw, query, userID)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			err = s.db.Get(&raw, query, userID)
		}

		if err != nil {
			if err == sql.ErrNoRows {
				return nil, wrapError(ErrNotFound, "preference for user %d", userID)
			}

			return nil, err
		}
	}

	p := &Preference{}

	err = json.Unmarshal(raw, p)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *pgService) PreferencePut(ns string, p *Preference) (*Preference, error) {
	if p.UserID == 0 {
		return nil, wrapError(ErrInvalidNotification, "user missing")
	}

	p.UpdatedAt = time.Now().UTC()

	stored, err := s.PreferenceGet(ns, p.UserID)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	if stored != nil {
		_, err = s.db.Exec(wrapNamespace(pgUpdatePreference, ns), p.UserID, data)
	} else {
		_, err = s.db.Exec(wrapNamespace(pgInsertPreference, ns), data)
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(pgListNotifications, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			rows, err = s.db.Query(query, params...)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	defer rows.Close()

	nl := List{}

	for rows.Next() {
		var (
			n = &Notification{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, n)
		if err != nil {
			return nil, err
		}

		nl = append(nl, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nl, nil
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateNotificationsTable, ns),
		wrapNamespace(pgCreatePreferencesTable, ns),
		pg.GuardIndex(ns, "notification_recipient", pgIndexRecipient),
		pg.GuardIndex(ns, "notification_preference_user", pgIndexPreferenceUser),
	}

	for _, query := range qs {
		_, err := s.db.Exec(query)
		if err != nil {
			return fmt.Errorf("query (%s): %s", query, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	qs := []string{
		wrapNamespace(pgDropNotificationsTable, ns),
		wrapNamespace(pgDropPreferencesTable, ns),
	}

	for _, query := range qs {
		_, err := s.db.Exec(query)
		if err != nil {
			return err
		}
	}

	return nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC().Format(time.RFC3339Nano))
	}

	if len(opts.IDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.IDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Kinds) > 0 {
		ps := []interface{}{}

		for _, k := range opts.Kinds {
			ps = append(ps, string(k))
		}

		clause, _, err := sqlx.In(pgClauseKinds, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if opts.Read != nil {
		clauses = append(clauses, pgClauseRead)
		params = append(params, *opts.Read)
	}

	if len(opts.RecipientIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.RecipientIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseRecipientIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	where := ""

	if len(clauses) > 0 {
		where = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	where = fmt.Sprintf("%s\n%s", where, pgOrderCreatedAt)

	if opts.Limit > 0 {
		where = fmt.Sprintf("%s\nLIMIT %d", where, opts.Limit)
	}

	return where, params, nil
}

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "notifications")
}

func wrapNamespace(query, namespace string) string {
	return fmt.Sprintf(query, namespace)
}
