package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"TodoWebService/models"
	"TodoWebService/store"
	"TodoWebService/store/storetest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func status(s models.TaskStatus) *models.TaskStatus { return &s }
func str(s string) *string                          { return &s }

func newStores(t *testing.T) (*store.UserStore, *store.TaskStore) {
	t.Helper()
	db := storetest.Open(t)
	return store.NewUserStore(db).WithCost(bcrypt.MinCost), store.NewTaskStore(db)
}

func createUser(t *testing.T, users *store.UserStore, email string) int64 {
	t.Helper()
	id, err := users.Create(context.Background(), email, "secret1")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return id
}

func TestUserStoreCreateAndFind(t *testing.T) {
	users, _ := newStores(t)
	ctx := context.Background()

	id := createUser(t, users, "a@x.com")
	if id <= 0 {
		t.Fatalf("Expected positive id, got %d", id)
	}

	u, err := users.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.ID != id || u.Password == "secret1" {
		t.Errorf("Unexpected user %+v", u)
	}
	if !store.CheckPassword(u, "secret1") || store.CheckPassword(u, "wrong!") {
		t.Error("Password hash check failed")
	}

	byID, err := users.FindByID(ctx, id)
	if err != nil || byID.Email != "a@x.com" {
		t.Fatalf("FindByID: %+v, %v", byID, err)
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	users, _ := newStores(t)
	createUser(t, users, "dup@x.com")
	_, err := users.Create(context.Background(), "dup@x.com", "secret1")
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestUserStoreNotFound(t *testing.T) {
	users, _ := newStores(t)
	if _, err := users.FindByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := users.FindByID(context.Background(), 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestTaskStoreCreateValidation(t *testing.T) {
	users, tasks := newStores(t)
	uid := createUser(t, users, "a@x.com")
	ctx := context.Background()

	cases := map[string]models.CreateTaskParams{
		"status out of range": {UserID: uid, Title: "buy milk", Status: status(9)},
		"missing status":      {UserID: uid, Title: "buy milk"},
		"missing title":       {UserID: uid, Status: status(models.StatusWaiting)},
		"missing user":        {Title: "buy milk", Status: status(models.StatusWaiting)},
	}
	for name, p := range cases {
		if _, err := tasks.Create(ctx, p); !errors.Is(err, store.ErrInvalidParams) {
			t.Errorf("%s: expected ErrInvalidParams, got %v", name, err)
		}
	}

	id, err := tasks.Create(ctx, models.CreateTaskParams{UserID: uid, Title: "buy milk", Status: status(models.StatusWaiting)})
	if err != nil || id <= 0 {
		t.Fatalf("Create: id=%d err=%v", id, err)
	}

	got, err := tasks.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Title != "buy milk" || got.StatusText != "waiting" || got.UserID != uid || got.Description != "" {
		t.Errorf("Unexpected task %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("Expected server-assigned timestamps")
	}
}

func TestTaskStoreFindByIDNotFound(t *testing.T) {
	_, tasks := newStores(t)
	if _, err := tasks.FindByID(context.Background(), 7); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct{ page, size, wantPage, wantSize int }{
		{0, 10, 1, 10},
		{-3, 10, 1, 10},
		{2, 500, 2, 15},
		{1, 0, 1, 15},
		{1, 100, 1, 100},
		{1, 1, 1, 1},
	}
	for _, c := range cases {
		p, s := store.NormalizePage(c.page, c.size)
		if p != c.wantPage || s != c.wantSize {
			t.Errorf("NormalizePage(%d, %d) = %d, %d; want %d, %d", c.page, c.size, p, s, c.wantPage, c.wantSize)
		}
	}
}

func TestTaskStoreGetPageList(t *testing.T) {
	users, tasks := newStores(t)
	ctx := context.Background()
	alice := createUser(t, users, "alice@x.com")
	bob := createUser(t, users, "bob@x.com")

	for i := 1; i <= 20; i++ {
		st := models.TaskStatus(i % 5)
		if _, err := tasks.Create(ctx, models.CreateTaskParams{UserID: alice, Title: fmt.Sprintf("Task %02d", i), Status: &st}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := tasks.Create(ctx, models.CreateTaskParams{UserID: bob, Title: "Task of bob", Status: status(0)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := tasks.GetPageList(ctx, models.TaskFilter{UserID: alice}, 0, 500)
	if err != nil {
		t.Fatalf("GetPageList: %v", err)
	}
	if first.Total != 20 {
		t.Errorf("Expected total 20, got %d", first.Total)
	}
	if len(first.List) != store.DefaultPageSize {
		t.Fatalf("Expected %d items, got %d", store.DefaultPageSize, len(first.List))
	}
	for i := 1; i < len(first.List); i++ {
		if first.List[i-1].ID <= first.List[i].ID {
			t.Fatalf("Expected ids strictly descending, got %d then %d", first.List[i-1].ID, first.List[i].ID)
		}
	}
	for _, task := range first.List {
		if task.UserID != alice {
			t.Fatalf("Listing leaked task of user %d", task.UserID)
		}
		if task.StatusText != task.Status.Text() {
			t.Errorf("Missing status label on %+v", task)
		}
	}

	second, err := tasks.GetPageList(ctx, models.TaskFilter{UserID: alice}, 2, 15)
	if err != nil {
		t.Fatalf("GetPageList: %v", err)
	}
	if len(second.List) != 5 || second.List[0].ID >= first.List[len(first.List)-1].ID {
		t.Errorf("Unexpected second page: %d items", len(second.List))
	}

	empty, err := tasks.GetPageList(ctx, models.TaskFilter{UserID: alice}, 9, 15)
	if err != nil {
		t.Fatalf("GetPageList: %v", err)
	}
	if empty.List == nil || len(empty.List) != 0 || empty.Total != 20 {
		t.Errorf("Expected empty non-nil page with total 20, got %+v", empty)
	}
}

func TestTaskStoreGetPageListFilters(t *testing.T) {
	users, tasks := newStores(t)
	ctx := context.Background()
	uid := createUser(t, users, "a@x.com")

	for _, p := range []models.CreateTaskParams{
		{UserID: uid, Title: "Buy milk", Status: status(models.StatusWaiting)},
		{UserID: uid, Title: "buy bread", Status: status(models.StatusDone)},
		{UserID: uid, Title: "Write report", Status: status(models.StatusWaiting)},
	} {
		if _, err := tasks.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	byTitle, err := tasks.GetPageList(ctx, models.TaskFilter{UserID: uid, Title: "Buy"}, 1, 15)
	if err != nil {
		t.Fatalf("GetPageList: %v", err)
	}
	if byTitle.Total != 1 || byTitle.List[0].Title != "Buy milk" {
		t.Errorf("Expected case-sensitive title match, got %+v", byTitle)
	}

	byStatus, err := tasks.GetPageList(ctx, models.TaskFilter{UserID: uid, Status: status(models.StatusWaiting)}, 1, 15)
	if err != nil {
		t.Fatalf("GetPageList: %v", err)
	}
	if byStatus.Total != 2 {
		t.Errorf("Expected 2 waiting tasks, got %d", byStatus.Total)
	}

	both, err := tasks.GetPageList(ctx, models.TaskFilter{UserID: uid, Title: "r", Status: status(models.StatusWaiting)}, 1, 15)
	if err != nil {
		t.Fatalf("GetPageList: %v", err)
	}
	if both.Total != 1 || both.List[0].Title != "Write report" {
		t.Errorf("Expected combined filter match, got %+v", both)
	}

	if _, err := tasks.GetPageList(ctx, models.TaskFilter{}, 1, 15); !errors.Is(err, store.ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams without user id, got %v", err)
	}
}

func TestTaskStoreUpdate(t *testing.T) {
	users, tasks := newStores(t)
	ctx := context.Background()
	alice := createUser(t, users, "alice@x.com")
	bob := createUser(t, users, "bob@x.com")

	id, err := tasks.Create(ctx, models.CreateTaskParams{UserID: alice, Title: "buy milk", Description: "2 litres", Status: status(0)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := tasks.FindByID(ctx, id)
	time.Sleep(5 * time.Millisecond)

	n, err := tasks.Update(ctx, id, bob, models.UpdateTaskParams{Title: str("stolen")})
	if err != nil || n != 0 {
		t.Fatalf("Expected zero rows for a foreign owner, got n=%d err=%v", n, err)
	}

	n, err = tasks.Update(ctx, id, alice, models.UpdateTaskParams{Status: status(models.StatusInProgress)})
	if err != nil || n != 1 {
		t.Fatalf("Expected one row, got n=%d err=%v", n, err)
	}
	after, _ := tasks.FindByID(ctx, id)
	if after.Title != "buy milk" || after.Description != "2 litres" || after.Status != models.StatusInProgress {
		t.Errorf("Partial update touched other fields: %+v", after)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("Expected updated_at to advance: %s -> %s", before.UpdatedAt, after.UpdatedAt)
	}

	if _, err := tasks.Update(ctx, id, alice, models.UpdateTaskParams{Status: status(7)}); !errors.Is(err, store.ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams, got %v", err)
	}
	if _, err := tasks.Update(ctx, id, alice, models.UpdateTaskParams{}); !errors.Is(err, store.ErrNoFields) {
		t.Errorf("Expected ErrNoFields, got %v", err)
	}
}

func TestTaskStoreDelete(t *testing.T) {
	users, tasks := newStores(t)
	ctx := context.Background()
	uid := createUser(t, users, "a@x.com")
	id, _ := tasks.Create(ctx, models.CreateTaskParams{UserID: uid, Title: "buy milk", Status: status(0)})

	n, err := tasks.Delete(ctx, id)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	n, err = tasks.Delete(ctx, id)
	if err != nil || n != 0 {
		t.Fatalf("Second delete: n=%d err=%v", n, err)
	}
	if _, err := tasks.FindByID(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestHooksObserveQueries(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := store.NewMetricsHook(reg)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db := storetest.Open(t, metrics, &store.LogHook{Logger: logger, SlowQuery: time.Second})
	users := store.NewUserStore(db).WithCost(bcrypt.MinCost)
	if _, err := users.Create(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, _ = users.FindByEmail(context.Background(), "missing@x.com")

	if n := testutil.CollectAndCount(metrics.Duration); n != 2 {
		t.Errorf("Expected insert and select series, got %d", n)
	}
}
