package follow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgDeleteFollow = `DELETE
		FROM %s.follows
		WHERE (json_data->>'from_id')::BIGINT = $1::BIGINT
		AND (json_data->>'to_id')::BIGINT = $2::BIGINT`
	pgInsertFollow = `INSERT INTO %s.follows(json_data) VALUES($1)`
	pgUpdateFollow = `UPDATE %s.follows
		SET json_data = $3
		WHERE (json_data->>'from_id')::BIGINT = $1::BIGINT
		AND (json_data->>'to_id')::BIGINT = $2::BIGINT`

	pgCountFollows = `SELECT count(json_data) FROM %s.follows
		%s`
	pgListFollows = `SELECT json_data FROM %s.follows
		%s`

	pgClauseBefore      = `json_data->>'created_at' < ?`
	pgClauseCloseFriend = `(json_data->>'close_friend')::BOOL = ?::BOOL`
	pgClauseFromIDs     = `(json_data->>'from_id')::BIGINT IN (?)`
	pgClauseStates      = `(json_data->>'state')::TEXT IN (?)`
	pgClauseToIDs       = `(json_data->>'to_id')::BIGINT IN (?)`

	pgOrderCreatedAt = `ORDER BY (json_data->>'created_at')::TIMESTAMP DESC`

	// The unique index doubles as the storage-boundary guarantee that at
	// most one edge exists per ordered pair, also under concurrent writers.
	pgIndexPairUnique = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.follows(((json_data->>'from_id')::BIGINT), ((json_data->>'to_id')::BIGINT))`
	pgIndexActiveFollower = `
		CREATE INDEX
			%s
		ON
			%s.follows(((json_data->>'to_id')::BIGINT))
		WHERE
			(json_data->>'state')::TEXT = 'active'`
	pgIndexActiveFollowing = `
		CREATE INDEX
			%s
		ON
			%s.follows(((json_data->>'from_id')::BIGINT))
		WHERE
			(json_data->>'state')::TEXT = 'active'`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.follows
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.follows`
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
		query = fmt.Sprintf(pgCountFollows, ns, where)
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

func (s *pgService) Delete(ns string, fromID, toID uint64) error {
	_, err := s.db.Exec(wrapNamespace(pgDeleteFollow, ns), fromID, toID)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return err
		}

		_, err = s.db.Exec(wrapNamespace(pgDeleteFollow, ns), fromID, toID)
	}

	return err
}

func (s *pgService) Put(ns string, f *Follow) (*Follow, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var (
		now    = time.Now().UTC()
		params = []interface{}{f.FromID, f.ToID}

		query string
	)

	fs, err := s.Query(ns, QueryOptions{
		FromIDs: []uint64{
			f.FromID,
		},
		ToIDs: []uint64{
			f.ToID,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(fs) > 0 {
		query = wrapNamespace(pgUpdateFollow, ns)

		f.CreatedAt = fs[0].CreatedAt
		f.UpdatedAt = now
	} else {
		params = []interface{}{}
		query = wrapNamespace(pgInsertFollow, ns)

		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}

		f.CreatedAt = f.CreatedAt.UTC()
		f.UpdatedAt = now
	}

	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(query, append(params, data)...)
	if err != nil {
		return nil, err
	}

	return f, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listFollows(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "follow_pair_unique", pgIndexPairUnique),
		pg.GuardIndex(ns, "follow_active_follower", pgIndexActiveFollower),
		pg.GuardIndex(ns, "follow_active_following", pgIndexActiveFollowing),
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

func (s *pgService) listFollows(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListFollows, ns, where)

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

	fs := List{}

	for rows.Next() {
		var (
			f = &Follow{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, f)
		if err != nil {
			return nil, err
		}

		fs = append(fs, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fs, nil
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

	if opts.CloseFriend != nil {
		clauses = append(clauses, pgClauseCloseFriend)
		params = append(params, *opts.CloseFriend)
	}

	if len(opts.FromIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.FromIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseFromIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.States) > 0 {
		ps := []interface{}{}

		for _, state := range opts.States {
			ps = append(ps, string(state))
		}

		clause, _, err := sqlx.In(pgClauseStates, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.ToIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.ToIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseToIDs, ps)
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
