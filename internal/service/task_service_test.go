package service

import (
	"context"
	"errors"
	"testing"

	"taskhub/internal/domain"
)

func registerOwner(t *testing.T, env *testEnv, email string) *domain.User {
	t.Helper()
	user, _, err := env.users.Register(context.Background(), "Owner", email, "secret123", 0)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func TestCreateTaskSetsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := registerOwner(t, env, "a@example.com")

	task, err := env.tasks.Create(ctx, owner.ID, "buy milk", false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.OwnerID != owner.ID {
		t.Fatalf("owner = %q, want %q", task.OwnerID, owner.ID)
	}
	if task.Completed {
		t.Fatal("completed should default to false")
	}

	if _, err := env.tasks.Create(ctx, owner.ID, "   ", false); !IsValidation(err) {
		t.Fatalf("blank description accepted: %v", err)
	}
}

func TestListTasksIsOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerOwner(t, env, "alice@example.com")
	bob := registerOwner(t, env, "bob@example.com")

	if _, err := env.tasks.Create(ctx, alice.ID, "alice task", false); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.tasks.Create(ctx, bob.ID, "bob task", true); err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks, err := env.tasks.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "alice task" {
		t.Fatalf("listing leaked across owners: %+v", tasks)
	}
}

func TestGetTaskFusesOwnershipAndExistence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerOwner(t, env, "alice@example.com")
	bob := registerOwner(t, env, "bob@example.com")

	task, err := env.tasks.Create(ctx, alice.ID, "alice task", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.tasks.Get(ctx, bob.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign task visible: %v", err)
	}
	if _, err := env.tasks.Get(ctx, alice.ID, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing task: got %v, want ErrNotFound", err)
	}
	if _, err := env.tasks.Get(ctx, alice.ID, task.ID); err != nil {
		t.Fatalf("owner denied access: %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerOwner(t, env, "alice@example.com")

	task, err := env.tasks.Create(ctx, alice.ID, "buy milk", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := env.tasks.Update(ctx, alice.ID, task.ID, map[string]any{"completed": true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.Description != "buy milk" {
		t.Fatalf("unexpected result: %+v", updated)
	}

	if _, err := env.tasks.Update(ctx, alice.ID, task.ID, map[string]any{"owner": "someone"}); !errors.Is(err, ErrInvalidUpdate) {
		t.Fatalf("owner field accepted: %v", err)
	}

	// rejected update applies nothing
	stored, err := env.tasks.Get(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Description != "buy milk" || !stored.Completed {
		t.Fatalf("rejected update mutated task: %+v", stored)
	}
}

func TestDeleteTaskOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerOwner(t, env, "alice@example.com")
	bob := registerOwner(t, env, "bob@example.com")

	task, err := env.tasks.Create(ctx, alice.ID, "alice task", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.tasks.Delete(ctx, bob.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrNotFound", err)
	}
	// the task must still exist for its owner
	if _, err := env.tasks.Get(ctx, alice.ID, task.ID); err != nil {
		t.Fatalf("task lost after foreign delete attempt: %v", err)
	}

	deleted, err := env.tasks.Delete(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if deleted.ID != task.ID {
		t.Fatalf("deleted wrong task: %s", deleted.ID)
	}
	if _, err := env.tasks.Get(ctx, alice.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("task survived delete: %v", err)
	}
}
