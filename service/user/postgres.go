package user

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgInsertUser = `INSERT INTO %s.users(json_data) VALUES($1)`
	pgUpdateUser = `UPDATE %s.users
		SET json_data = $2
		WHERE (json_data->>'id')::BIGINT = $1::BIGINT`

	pgCountUsers = `SELECT count(json_data) FROM %s.users
		%s`
	pgListUsers = `SELECT json_data FROM %s.users
		%s`

	pgClauseEmails    = `(json_data->>'email')::TEXT IN (?)`
	pgClauseIDs       = `(json_data->>'id')::BIGINT IN (?)`
	pgClausePrivacies = `(json_data->>'privacy')::TEXT IN (?)`
	pgClauseSearch    = `((json_data->>'username') ILIKE ? OR (json_data->>'fullname') ILIKE ?)`
	pgClauseStatuses  = `(json_data->>'status')::TEXT IN (?)`
	pgClauseUsernames = `(json_data->>'username')::TEXT IN (?)`

	pgOrderCreatedAt = `ORDER BY (json_data->>'created_at')::TIMESTAMP DESC`

	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.users(((json_data->>'id')::BIGINT))`
	pgIndexUsername = `
		CREATE INDEX
			%s
		ON
			%s.users(((json_data->>'username')::TEXT))`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.users
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.users`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	where, params, err := convertOpts(opts, false)
	if err != nil {
		return 0, err
	}

	var (
		count = 0
		query = fmt.Sprintf(pgCountUsers, ns, where)
	)

	err = s.db.Get(&count, query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return 0, err
		}

		err = s.db.Get(&count, query, params...)
	}

	return count, err
}

func (s *pgService) Put(ns string, u *User) (*User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var (
		now = time.Now().UTC()

		params []interface{}
		query  string
	)

	if u.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		u.ID = id
		u.CreatedAt = now
		u.UpdatedAt = now

		query = wrapNamespace(pgInsertUser, ns)
	} else {
		us, err := s.Query(ns, QueryOptions{
			IDs: []uint64{u.ID},
		})
		if err != nil {
			return nil, err
		}

		if len(us) == 0 {
			return nil, ErrNotFound
		}

		u.CreatedAt = us[0].CreatedAt
		u.UpdatedAt = now

		params = []interface{}{u.ID}
		query = wrapNamespace(pgUpdateUser, ns)
	}

	data, err := json.Marshal(u)
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

	return u, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, false)
	if err != nil {
		return nil, err
	}

	return s.listUsers(ns, where, params...)
}

func (s *pgService) Search(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, true)
	if err != nil {
		return nil, err
	}

	return s.listUsers(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "user_id", pgIndexID),
		pg.GuardIndex(ns, "user_username", pgIndexUsername),
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
	_, err := s.db.Exec(wrapNamespace(pgDropTable, ns))
	return err
}

func (s *pgService) listUsers(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListUsers, ns, where)

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

	us := List{}

	for rows.Next() {
		var (
			u = &User{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, u)
		if err != nil {
			return nil, err
		}

		us = append(us, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return us, nil
}

func convertOpts(opts QueryOptions, search bool) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if len(opts.Emails) > 0 {
		ps := []interface{}{}

		for _, email := range opts.Emails {
			ps = append(ps, email)
		}

		clause, _, err := sqlx.In(pgClauseEmails, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
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

	if len(opts.Privacies) > 0 {
		ps := []interface{}{}

		for _, p := range opts.Privacies {
			ps = append(ps, string(p))
		}

		clause, _, err := sqlx.In(pgClausePrivacies, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Statuses) > 0 {
		ps := []interface{}{}

		for _, status := range opts.Statuses {
			ps = append(ps, string(status))
		}

		clause, _, err := sqlx.In(pgClauseStatuses, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Usernames) > 0 {
		ps := []interface{}{}

		for _, username := range opts.Usernames {
			ps = append(ps, username)
		}

		clause, _, err := sqlx.In(pgClauseUsernames, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if search && opts.Query != "" {
		like := fmt.Sprintf("%%%s%%", opts.Query)

		clauses = append(clauses, pgClauseSearch)
		params = append(params, like, like)
	}

	query := ""

	if len(clauses) > 0 {
		query = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	query = fmt.Sprintf("%s\n%s", query, pgOrderCreatedAt)

	if opts.Limit > 0 {
		query = fmt.Sprintf("%s\nLIMIT %d", query, opts.Limit)
	}

	return query, params, nil
}

func wrapNamespace(query, namespace string) string {
	return fmt.Sprintf(query, namespace)
}
