package post

import (
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
		owner     = uint64(rand.Int63())
		community = uint64(rand.Int63())
		deleted   = true
	)

	for _, post := range testList(owner, community) {
		_, err := service.Put(namespace, post)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 27,
		&QueryOptions{CommunityIDs: []uint64{community}}:              4,
		&QueryOptions{Deleted: &deleted}:                              0,
		&QueryOptions{OwnerIDs: []uint64{owner}}:                      12,
		&QueryOptions{Visibilities: []Visibility{VisibilityFriends}}:  6,
		&QueryOptions{Visibilities: []Visibility{VisibilityPrivate}}:  2,
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

func testList(owner, community uint64) List {
	ps := List{}

	for i := 0; i < 10; i++ {
		ps = append(ps, &Post{
			Content:    "Walked a city made of water.",
			OwnerID:    owner,
			Title:      "Recurring flood",
			Visibility: VisibilityPublic,
		})
	}

	for i := 0; i < 2; i++ {
		ps = append(ps, &Post{
			Content:    "Only for me.",
			OwnerID:    owner,
			Title:      "Kept close",
			Visibility: VisibilityPrivate,
		})
	}

	for i := 0; i < 6; i++ {
		ps = append(ps, &Post{
			Content:    "Could not find the staircase again.",
			OwnerID:    uint64(rand.Int63()),
			Title:      "Lost floors",
			Visibility: VisibilityFriends,
		})
	}

	for i := 0; i < 4; i++ {
		ps = append(ps, &Post{
			CommunityID: community,
			Content:     "Everyone here dreams of trains.",
			OwnerID:     uint64(rand.Int63()),
			Title:       "Station dreams",
			Visibility:  VisibilityPublic,
		})
	}

	for i := 0; i < 5; i++ {
		ps = append(ps, &Post{
			Content:    "Teeth again.",
			OwnerID:    uint64(rand.Int63()),
			Title:      "The usual",
			Visibility: VisibilityPublic,
		})
	}

	return ps
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		post      = &Post{
			Content:    "There was a lighthouse on every corner.",
			Emotions:   []string{"wonder"},
			OwnerID:    uint64(rand.Int63()),
			Title:      "Harbour town",
			Visibility: VisibilityPublic,
		}
	)

	created, err := service.Put(namespace, post)
	if err != nil {
		t.Fatal(err)
	}

	if created.ID == 0 {
		t.Errorf("id not assigned")
	}

	ps, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ps), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := ps[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Content = "There was a lighthouse on every corner, all lit."
	created.Edited = true

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	ps, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ps), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := ps[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := ps[0].CreatedAt, created.CreatedAt; !have.Equal(want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
		owner     = uint64(rand.Int63())
	)

	// missing OwnerID
	_, err := service.Put(namespace, &Post{
		Content:    "No owner.",
		Title:      "Orphan",
		Visibility: VisibilityPublic,
	})
	if !IsInvalidPost(err) {
		t.Errorf("expected error: %s", ErrInvalidPost)
	}

	// missing Title
	_, err = service.Put(namespace, &Post{
		Content:    "No title.",
		OwnerID:    owner,
		Visibility: VisibilityPublic,
	})
	if !IsInvalidPost(err) {
		t.Errorf("expected error: %s", ErrInvalidPost)
	}

	// missing Content
	_, err = service.Put(namespace, &Post{
		OwnerID:    owner,
		Title:      "Empty",
		Visibility: VisibilityPublic,
	})
	if !IsInvalidPost(err) {
		t.Errorf("expected error: %s", ErrInvalidPost)
	}

	// unsupported Visibility
	_, err = service.Put(namespace, &Post{
		Content:    "Bad audience.",
		OwnerID:    owner,
		Title:      "Oops",
		Visibility: Visibility("everyone"),
	})
	if !IsInvalidPost(err) {
		t.Errorf("expected error: %s", ErrInvalidPost)
	}

	// update of unknown id
	_, err = service.Put(namespace, &Post{
		Content:    "Never stored.",
		ID:         uint64(rand.Int63()),
		OwnerID:    owner,
		Title:      "Ghost",
		Visibility: VisibilityPublic,
	})
	if !IsNotFound(err) {
		t.Errorf("expected error: %s", ErrNotFound)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		owner     = uint64(rand.Int63())
		community = uint64(rand.Int63())
	)

	for _, post := range testList(owner, community) {
		_, err := service.Put(namespace, post)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 27,
		&QueryOptions{CommunityIDs: []uint64{community}}:             4,
		&QueryOptions{Limit: 5}:                                      5,
		&QueryOptions{OwnerIDs: []uint64{owner}}:                     12,
		&QueryOptions{Visibilities: []Visibility{VisibilityFriends}}: 6,
	}

	for opts, want := range cases {
		ps, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(ps); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}

	ps, err := service.Query(namespace, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(ps)-1; i++ {
		if ps[i].CreatedAt.Before(ps[i+1].CreatedAt) {
			t.Errorf("expected newest first ordering")
		}
	}
}
