package mute

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgDeleteMute = `DELETE
		FROM %s.mutes
		WHERE (json_data->>'from_id')::BIGINT = $1::BIGINT
		AND (json_data->>'to_id')::BIGINT = $2::BIGINT`
	pgInsertMute = `INSERT INTO %s.mutes(json_data) VALUES($1)`

	pgListMutes = `SELECT json_data FROM %s.mutes
		%s`

	pgClauseFromIDs = `(json_data->>'from_id')::BIGINT IN (?)`
	pgClauseToIDs   = `(json_data->>'to_id')::BIGINT IN (?)`

	pgIndexPairUnique = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.mutes(((json_data->>'from_id')::BIGINT), ((json_data->>'to_id')::BIGINT))`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.mutes
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.mutes`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Delete(ns string, fromID, toID uint64) error {
	_, err := s.db.Exec(wrapNamespace(pgDeleteMute, ns), fromID, toID)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return err
		}

		_, err = s.db.Exec(wrapNamespace(pgDeleteMute, ns), fromID, toID)
	}

	return err
}

func (s *pgService) Put(ns string, m *Mute) (*Mute, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	m.CreatedAt = m.CreatedAt.UTC()

	ms, err := s.Query(ns, QueryOptions{
		FromIDs: []uint64{m.FromID},
		ToIDs:   []uint64{m.ToID},
	})
	if err != nil {
		return nil, err
	}

	// Muting is idempotent.
	if len(ms) > 0 {
		return ms[0], nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(wrapNamespace(pgInsertMute, ns), data)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if len(opts.FromIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.FromIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseFromIDs, ps)
		if err != nil {
			return nil, err
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
			return nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	where := ""

	if len(clauses) > 0 {
		where = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	query := fmt.Sprintf(pgListMutes, ns, where)

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

	ms := List{}

	for rows.Next() {
		var (
			m = &Mute{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, m)
		if err != nil {
			return nil, err
		}

		ms = append(ms, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ms, nil
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "mute_pair_unique", pgIndexPairUnique),
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
