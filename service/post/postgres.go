package post

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgInsertPost = `INSERT INTO %s.posts(json_data) VALUES($1)`
	pgUpdatePost = `UPDATE %s.posts
		SET json_data = $2
		WHERE (json_data->>'id')::BIGINT = $1::BIGINT`

	pgCountPosts = `SELECT count(json_data) FROM %s.posts
		%s`
	pgListPosts = `SELECT json_data FROM %s.posts
		%s`

	pgClauseBefore       = `(json_data->>'created_at')::TIMESTAMP < ?`
	pgClauseCommunityIDs = `(json_data->>'community_id')::BIGINT IN (?)`
	pgClauseDeleted      = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseIDs          = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseOwnerIDs     = `(json_data->>'owner_id')::BIGINT IN (?)`
	pgClauseVisibilities = `(json_data->>'visibility')::TEXT IN (?)`

	pgOrderCreatedAt = `ORDER BY (json_data->>'created_at')::TIMESTAMP DESC`

	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.posts(((json_data->>'id')::BIGINT))`
	pgIndexOwner = `
		CREATE INDEX
			%s
		ON
			%s.posts(((json_data->>'owner_id')::BIGINT))
		WHERE
			(json_data->>'deleted')::BOOL = false`
	pgIndexOwnerVisibility = `
		CREATE INDEX
			%s
		ON
			%s.posts(
				((json_data->>'owner_id')::BIGINT),
				((json_data->>'visibility')::TEXT)
			)
		WHERE
			(json_data->>'deleted')::BOOL = false`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.posts
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.posts`
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
		query = fmt.Sprintf(pgCountPosts, ns, where)
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

func (s *pgService) Put(ns string, p *Post) (*Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		now = time.Now().UTC()

		params []interface{}
		query  string
	)

	if p.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		p.ID = id
		p.CreatedAt = now
		p.UpdatedAt = now

		query = wrapNamespace(pgInsertPost, ns)
	} else {
		ps, err := s.Query(ns, QueryOptions{
			IDs: []uint64{p.ID},
		})
		if err != nil {
			return nil, err
		}

		if len(ps) == 0 {
			return nil, ErrNotFound
		}

		p.CreatedAt = ps[0].CreatedAt
		p.UpdatedAt = now

		params = []interface{}{p.ID}
		query = wrapNamespace(pgUpdatePost, ns)
	}

	data, err := json.Marshal(p)
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

	return p, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listPosts(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "post_id", pgIndexID),
		pg.GuardIndex(ns, "post_owner", pgIndexOwner),
		pg.GuardIndex(ns, "post_owner_visibility", pgIndexOwnerVisibility),
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

func (s *pgService) listPosts(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListPosts, ns, where)

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

	ps := List{}

	for rows.Next() {
		var (
			p = &Post{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, p)
		if err != nil {
			return nil, err
		}

		ps = append(ps, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ps, nil
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

	if len(opts.CommunityIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.CommunityIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseCommunityIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if opts.Deleted != nil {
		clauses = append(clauses, pgClauseDeleted)
		params = append(params, *opts.Deleted)
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

	if len(opts.Visibilities) > 0 {
		ps := []interface{}{}

		for _, v := range opts.Visibilities {
			ps = append(ps, string(v))
		}

		clause, _, err := sqlx.In(pgClauseVisibilities, ps)
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
