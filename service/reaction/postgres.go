package reaction

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgInsertReaction = `
		INSERT INTO %s.reactions(
			deleted, id, owner_id, post_id, created_at, updated_at
		) VALUES(
			$1, $2, $3, $4, $5, $6
		)`
	pgUpdateReaction = `
		UPDATE
			%s.reactions
		SET
			deleted = $2,
			updated_at = $3
		WHERE
			id = $1`

	pgCountReactions = `SELECT count(*) FROM %s.reactions %s`
	pgCountReactionsMulti = `
		SELECT
			post_id,
			count(*)
		FROM
			%s.reactions
		WHERE
			deleted = false
			AND post_id IN (?)
		GROUP BY
			post_id`
	pgListReactions = `
		SELECT
			deleted, id, owner_id, post_id, created_at, updated_at
		FROM
			%s.reactions
		%s`

	pgClauseBefore   = `updated_at < ?`
	pgClauseDeleted  = `deleted = ?`
	pgClauseIDs      = `id IN (?)`
	pgClauseOwnerIDs = `owner_id IN (?)`
	pgClausePostIDs  = `post_id IN (?)`

	pgOrderUpdatedAt = `ORDER BY updated_at DESC`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.reactions(
		deleted BOOL DEFAULT false,
		id BIGINT PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		post_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.reactions`

	pgIndexPost = `
		CREATE INDEX
			%s
		ON
			%s.reactions
		USING
			btree(post_id, updated_at DESC)
		WHERE
			deleted = false`
	pgIndexPostOwnerUnique = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.reactions
		USING
			btree(post_id, owner_id)`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{
		db: db,
	}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return 0, err
	}

	var (
		query = fmt.Sprintf(pgCountReactions, ns, where)

		count int
	)

	err = s.db.Get(&count, query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return count, err
		}

		err = s.db.Get(&count, query, params...)
	}

	return count, err
}

func (s *pgService) CountMulti(ns string, postIDs ...uint64) (CountsMap, error) {
	countsMap := CountsMap{}

	if len(postIDs) == 0 {
		return countsMap, nil
	}

	ps := []interface{}{}

	for _, id := range postIDs {
		ps = append(ps, id)
	}

	query, _, err := sqlx.In(pgCountReactionsMulti, ps)
	if err != nil {
		return nil, err
	}

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	query = fmt.Sprintf(query, ns)

	rows, err := s.db.Query(query, ps...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			rows, err = s.db.Query(query, ps...)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	defer rows.Close()

	for _, id := range postIDs {
		countsMap[id] = 0
	}

	for rows.Next() {
		var (
			postID uint64
			count  int
		)

		err := rows.Scan(&postID, &count)
		if err != nil {
			return nil, err
		}

		countsMap[postID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return countsMap, nil
}

func (s *pgService) Put(ns string, r *Reaction) (*Reaction, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if r.ID == 0 {
		return s.insert(ns, r)
	}

	return s.update(ns, r)
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listReactions(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "reaction_post", pgIndexPost),
		pg.GuardIndex(ns, "reaction_post_owner_unique", pgIndexPostOwnerUnique),
	}

	for _, q := range qs {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("setup '%s': %s", q, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	qs := []string{
		fmt.Sprintf(pgDropTable, ns),
	}

	for _, q := range qs {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("teardown '%s': %s", q, err)
		}
	}

	return nil
}

func (s *pgService) insert(ns string, r *Reaction) (*Reaction, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	ts, err := time.Parse(pg.TimeFormat, r.CreatedAt.UTC().Format(pg.TimeFormat))
	if err != nil {
		return nil, err
	}

	r.CreatedAt = ts
	r.UpdatedAt = ts

	id, err := flake.NextID(flakeNamespace(ns))
	if err != nil {
		return nil, err
	}

	r.ID = id

	var (
		params = []interface{}{
			r.Deleted,
			r.ID,
			r.OwnerID,
			r.PostID,
			r.CreatedAt,
			r.UpdatedAt,
		}
		query = fmt.Sprintf(pgInsertReaction, ns)
	)

	_, err = s.db.Exec(query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, params...)
	}

	return r, err
}

func (s *pgService) listReactions(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListReactions, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listReactions(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	rs := List{}

	for rows.Next() {
		reaction := &Reaction{}

		err := rows.Scan(
			&reaction.Deleted,
			&reaction.ID,
			&reaction.OwnerID,
			&reaction.PostID,
			&reaction.CreatedAt,
			&reaction.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		reaction.CreatedAt = reaction.CreatedAt.UTC()
		reaction.UpdatedAt = reaction.UpdatedAt.UTC()

		rs = append(rs, reaction)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

func (s *pgService) update(ns string, r *Reaction) (*Reaction, error) {
	now, err := time.Parse(pg.TimeFormat, time.Now().UTC().Format(pg.TimeFormat))
	if err != nil {
		return nil, err
	}

	r.UpdatedAt = now

	var (
		params = []interface{}{
			r.ID,
			r.Deleted,
			r.UpdatedAt,
		}
		query = fmt.Sprintf(pgUpdateReaction, ns)
	)

	_, err = s.db.Exec(query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, params...)
	}

	return r, err
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC().Format(pg.TimeFormat))
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

	where := ""

	if len(clauses) > 0 {
		where = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	where = fmt.Sprintf("%s\n%s", where, pgOrderUpdatedAt)

	if opts.Limit > 0 {
		where = fmt.Sprintf("%s\nLIMIT %d", where, opts.Limit)
	}

	return where, params, nil
}
