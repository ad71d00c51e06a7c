package save

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgDeleteSave = `DELETE
		FROM %s.saves
		WHERE (json_data->>'owner_id')::BIGINT = $1::BIGINT
		AND (json_data->>'post_id')::BIGINT = $2::BIGINT`
	pgInsertSave = `INSERT INTO %s.saves(json_data) VALUES($1)`

	pgListSaves = `SELECT json_data FROM %s.saves
		%s`

	pgClauseBefore   = `(json_data->>'created_at')::TIMESTAMP < ?`
	pgClauseOwnerIDs = `(json_data->>'owner_id')::BIGINT IN (?)`
	pgClausePostIDs  = `(json_data->>'post_id')::BIGINT IN (?)`

	pgOrderCreatedAt = `ORDER BY (json_data->>'created_at')::TIMESTAMP DESC`

	pgIndexPairUnique = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.saves(((json_data->>'owner_id')::BIGINT), ((json_data->>'post_id')::BIGINT))`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.saves
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.saves`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Delete(ns string, ownerID, postID uint64) error {
	_, err := s.db.Exec(wrapNamespace(pgDeleteSave, ns), ownerID, postID)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return err
		}

		_, err = s.db.Exec(wrapNamespace(pgDeleteSave, ns), ownerID, postID)
	}

	return err
}

func (s *pgService) Put(ns string, sv *Save) (*Save, error) {
	if err := sv.Validate(); err != nil {
		return nil, err
	}

	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = time.Now().UTC()
	}

	sv.CreatedAt = sv.CreatedAt.UTC()

	ss, err := s.Query(ns, QueryOptions{
		OwnerIDs: []uint64{sv.OwnerID},
		PostIDs:  []uint64{sv.PostID},
	})
	if err != nil {
		return nil, err
	}

	// Saving is idempotent.
	if len(ss) > 0 {
		return ss[0], nil
	}

	data, err := json.Marshal(sv)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(wrapNamespace(pgInsertSave, ns), data)
	if err != nil {
		return nil, err
	}

	return sv, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC().Format(time.RFC3339Nano))
	}

	if len(opts.OwnerIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.OwnerIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseOwnerIDs, ps)
		if err != nil {
			return nil, err
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
			return nil, err
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

	query := fmt.Sprintf(pgListSaves, ns, where)

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

	ss := List{}

	for rows.Next() {
		var (
			sv = &Save{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, sv)
		if err != nil {
			return nil, err
		}

		ss = append(ss, sv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ss, nil
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "save_pair_unique", pgIndexPairUnique),
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

func wrapNamespace(query, namespace string) string {
	return fmt.Sprintf(query, namespace)
}
