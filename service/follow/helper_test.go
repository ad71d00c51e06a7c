package follow

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
		from      = uint64(rand.Int63())
		to        = uint64(rand.Int63())
		closeFriend = true
		start     = time.Now()
	)

	for _, f := range testList(from, to, start) {
		_, err := service.Put(namespace, f)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 34,
		&QueryOptions{Before: start.Add(-(time.Hour + time.Minute))}: 8,
		&QueryOptions{CloseFriend: &closeFriend}:                     4,
		&QueryOptions{FromIDs: []uint64{from}}:                       11,
		&QueryOptions{States: []State{StatePending}}:                 5,
		&QueryOptions{ToIDs: []uint64{to}}:                           14,
	}

	for opts, want := range cases {
		have, err := service.Count(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func testList(from, to uint64, start time.Time) List {
	fs := List{}

	for i := 0; i < 7; i++ {
		fs = append(fs, &Follow{
			FromID: from,
			State:  StateActive,
			ToID:   uint64(rand.Int63()),
		})
	}

	for i := 0; i < 4; i++ {
		fs = append(fs, &Follow{
			CloseFriend: true,
			FromID:      from,
			State:       StateActive,
			ToID:        uint64(rand.Int63()),
		})
	}

	for i := 0; i < 5; i++ {
		fs = append(fs, &Follow{
			FromID: uint64(rand.Int63()),
			State:  StatePending,
			ToID:   to,
		})
	}

	for i := 0; i < 9; i++ {
		fs = append(fs, &Follow{
			FromID: uint64(rand.Int63()),
			State:  StateActive,
			ToID:   to,
		})
	}

	for i := 1; i < 10; i++ {
		fs = append(fs, &Follow{
			FromID:    uint64(rand.Int63()),
			State:     StateActive,
			ToID:      uint64(rand.Int63()),
			CreatedAt: start.Add(-(time.Duration(i) * time.Hour)),
		})
	}

	return fs
}

func testServiceDelete(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_delete"
		service   = p(t, namespace)
		follow    = &Follow{
			FromID: uint64(rand.Int63()),
			State:  StateActive,
			ToID:   uint64(rand.Int63()),
		}
	)

	created, err := service.Put(namespace, follow)
	if err != nil {
		t.Fatal(err)
	}

	err = service.Delete(namespace, created.FromID, created.ToID)
	if err != nil {
		t.Fatal(err)
	}

	fs, err := service.Query(namespace, QueryOptions{
		FromIDs: []uint64{created.FromID},
		ToIDs:   []uint64{created.ToID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(fs), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	err = service.Delete(namespace, created.FromID, created.ToID)
	if err != nil {
		t.Fatal(err)
	}
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		follow    = &Follow{
			FromID: uint64(rand.Int63()),
			State:  StatePending,
			ToID:   uint64(rand.Int63()),
		}
	)

	created, err := service.Put(namespace, follow)
	if err != nil {
		t.Fatal(err)
	}

	fs, err := service.Query(namespace, QueryOptions{
		FromIDs: []uint64{follow.FromID},
		ToIDs:   []uint64{follow.ToID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(fs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := fs[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.State = StateActive

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	fs, err = service.Query(namespace, QueryOptions{
		FromIDs: []uint64{follow.FromID},
		ToIDs:   []uint64{follow.ToID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(fs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := fs[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := fs[0].CreatedAt, created.CreatedAt; !have.Equal(want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
		id        = uint64(rand.Int63())
	)

	// missing FromID
	_, err := service.Put(namespace, &Follow{})
	if !IsInvalidFollow(err) {
		t.Errorf("expected error: %s", ErrInvalidFollow)
	}

	// missing ToID
	_, err = service.Put(namespace, &Follow{
		FromID: id,
	})
	if !IsInvalidFollow(err) {
		t.Errorf("expected error: %s", ErrInvalidFollow)
	}

	// self-referential edge
	_, err = service.Put(namespace, &Follow{
		FromID: id,
		ToID:   id,
	})
	if !IsInvalidFollow(err) {
		t.Errorf("expected error: %s", ErrInvalidFollow)
	}

	// missing State
	_, err = service.Put(namespace, &Follow{
		FromID: id,
		ToID:   uint64(rand.Int63()),
	})
	if !IsInvalidFollow(err) {
		t.Errorf("expected error: %s", ErrInvalidFollow)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		from      = uint64(rand.Int63())
		to        = uint64(rand.Int63())
		closeFriend = true
		start     = time.Now()
	)

	for _, f := range testList(from, to, start) {
		_, err := service.Put(namespace, f)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 34,
		&QueryOptions{Before: start.Add(-(time.Hour + time.Minute))}: 8,
		&QueryOptions{CloseFriend: &closeFriend}:                     4,
		&QueryOptions{FromIDs: []uint64{from}}:                       11,
		&QueryOptions{Limit: 10}:                                     10,
		&QueryOptions{States: []State{StatePending}}:                 5,
		&QueryOptions{ToIDs: []uint64{to}}:                           14,
	}

	for opts, want := range cases {
		fs, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(fs); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
