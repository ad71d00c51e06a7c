package comment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgInsertComment = `INSERT INTO %s.comments(json_data) VALUES($1)`
	pgUpdateComment = `UPDATE %s.comments
		SET json_data = $2
		WHERE (json_data->>'id')::BIGINT = $1::BIGINT`

	pgCountComments = `SELECT count(json_data) FROM %s.comments
		%s`
	pgListComments = `SELECT json_data FROM %s.comments
		%s`

	pgClauseBefore    = `(json_data->>'created_at')::TIMESTAMP < ?`
	pgClauseIDs       = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseOwnerIDs  = `(json_data->>'owner_id')::BIGINT IN (?)`
	pgClauseParentIDs = `(json_data->>'parent_id')::BIGINT IN (?)`
	pgClausePostIDs   = `(json_data->>'post_id')::BIGINT IN (?)`
	pgClauseStatuses  = `(json_data->>'status')::TEXT IN (?)`

	pgOrderCreatedAt = `ORDER BY (json_data->>'created_at')::TIMESTAMP ASC`

	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.comments(((json_data->>'id')::BIGINT))`
	pgIndexPost = `
		CREATE INDEX
			%s
		ON
			%s.comments(((json_data->>'post_id')::BIGINT))`
	pgIndexParent = `
		CREATE INDEX
			%s
		ON
			%s.comments(((json_data->>'parent_id')::BIGINT))
		WHERE
			(json_data->>'status')::TEXT = 'active'`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.comments
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.comments`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return 0, err
	}

	var (
		count = 0
		query = fmt.Sprintf(pgCountComments, ns, where)
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

func (s *pgService) Put(ns string, c *Comment) (*Comment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var (
		now = time.Now().UTC()

		params []interface{}
		query  string
	)

	if c.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		c.ID = id
		c.CreatedAt = now
		c.UpdatedAt = now

		query = wrapNamespace(pgInsertComment, ns)
	} else {
		cs, err := s.Query(ns, QueryOptions{
			IDs: []uint64{c.ID},
		})
		if err != nil {
			return nil, err
		}

		if len(cs) == 0 {
			return nil, ErrNotFound
		}

		c.CreatedAt = cs[0].CreatedAt
		c.UpdatedAt = now

		params = []interface{}{c.ID}
		query = wrapNamespace(pgUpdateComment, ns)
	}

	data, err := json.Marshal(c)
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

	return c, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(pgListComments, ns, where)

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

	cs := List{}

	for rows.Next() {
		var (
			c = &Comment{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, c)
		if err != nil {
			return nil, err
		}

		cs = append(cs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cs, nil
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "comment_id", pgIndexID),
		pg.GuardIndex(ns, "comment_post", pgIndexPost),
		pg.GuardIndex(ns, "comment_parent_active", pgIndexParent),
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

	if len(opts.OwnerIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.OwnerIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseOwnerIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.ParentIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.ParentIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseParentIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.PostIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.PostIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClausePostIDs, ps)
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
