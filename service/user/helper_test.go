package user

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
	)

	for _, u := range testList() {
		_, err := service.Put(namespace, u)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 23,
		&QueryOptions{Privacies: []Privacy{PrivacyPrivate}}: 9,
		&QueryOptions{Statuses: []Status{StatusSuspended}}:  4,
		&QueryOptions{Usernames: []string{"moonwatcher"}}:   1,
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

func testList() List {
	us := List{}

	for i := 0; i < 10; i++ {
		id := uint64(rand.Int63())

		us = append(us, &User{
			Email:    fmt.Sprintf("user%d@dream.dev", id),
			Privacy:  PrivacyPublic,
			Status:   StatusActive,
			Username: fmt.Sprintf("user%d", id),
		})
	}

	for i := 0; i < 9; i++ {
		id := uint64(rand.Int63())

		us = append(us, &User{
			Email:    fmt.Sprintf("user%d@dream.dev", id),
			Privacy:  PrivacyPrivate,
			Status:   StatusActive,
			Username: fmt.Sprintf("user%d", id),
		})
	}

	for i := 0; i < 4; i++ {
		id := uint64(rand.Int63())

		us = append(us, &User{
			Email:    fmt.Sprintf("user%d@dream.dev", id),
			Privacy:  PrivacyPublic,
			Status:   StatusSuspended,
			Username: fmt.Sprintf("user%d", id),
		})
	}

	us[0].Fullname = "Luna Moreira"
	us[0].Username = "moonwatcher"

	return us
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		user      = &User{
			Email:    "dreamer@dream.dev",
			Privacy:  PrivacyPublic,
			Status:   StatusActive,
			Username: "dreamer",
		}
	)

	created, err := service.Put(namespace, user)
	if err != nil {
		t.Fatal(err)
	}

	if created.ID == 0 {
		t.Errorf("id not assigned")
	}

	us, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(us), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := us[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Privacy = PrivacyPrivate

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	us, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(us), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := us[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := us[0].CreatedAt, created.CreatedAt; !have.Equal(want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing email
	_, err := service.Put(namespace, &User{
		Privacy:  PrivacyPublic,
		Status:   StatusActive,
		Username: "dreamer",
	})
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}

	// malformed email
	_, err = service.Put(namespace, &User{
		Email:    "not-an-email",
		Privacy:  PrivacyPublic,
		Status:   StatusActive,
		Username: "dreamer",
	})
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}

	// missing username
	_, err = service.Put(namespace, &User{
		Email:   "dreamer@dream.dev",
		Privacy: PrivacyPublic,
		Status:  StatusActive,
	})
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}

	// missing status
	_, err = service.Put(namespace, &User{
		Email:    "dreamer@dream.dev",
		Privacy:  PrivacyPublic,
		Username: "dreamer",
	})
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}

	// missing privacy
	_, err = service.Put(namespace, &User{
		Email:    "dreamer@dream.dev",
		Status:   StatusActive,
		Username: "dreamer",
	})
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}
}

func testServiceSearch(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_search"
		service   = p(t, namespace)
	)

	for _, u := range testList() {
		_, err := service.Put(namespace, u)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[string]int{
		"moonwatcher": 1,
		"MOONWATCHER": 1,
		"luna":        1,
		"nobody-here": 0,
	}

	for query, want := range cases {
		us, err := service.Search(namespace, QueryOptions{
			Query: query,
		})
		if err != nil {
			t.Fatal(err)
		}

		if have := len(us); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
