package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

func TestMemoryUserStore_Create(t *testing.T) {
	t.Run("create new user", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		user := &models.User{
			UserID: uuid.Must(uuid.NewV7()),
			Name:   "Lisa",
			Email:  "lisa@example.com",
			Role:   models.RoleStudent,
		}

		err := st.Create(ctx, user)
		require.NoError(t, err)
	})

	t.Run("create duplicate user returns error", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		user := &models.User{
			UserID: uuid.Must(uuid.NewV7()),
			Name:   "Lisa",
			Role:   models.RoleStudent,
		}

		require.NoError(t, st.Create(ctx, user))

		err := st.Create(ctx, user)
		require.Error(t, err)
		require.Equal(t, store.ErrUserAlreadyExists, err)
	})
}

func TestMemoryUserStore_Get(t *testing.T) {
	t.Run("get existing user", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		user := &models.User{
			UserID: uuid.Must(uuid.NewV7()),
			Name:   "Lisa",
			Email:  "lisa@example.com",
			Role:   models.RoleStudent,
		}

		require.NoError(t, st.Create(ctx, user))

		retrieved, err := st.Get(ctx, user.UserID)
		require.NoError(t, err)
		require.Equal(t, user.UserID, retrieved.UserID)
		require.Equal(t, user.Email, retrieved.Email)
	})

	t.Run("get nonexistent user returns error", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		_, err := st.Get(ctx, uuid.Must(uuid.NewV7()))
		require.Error(t, err)
		require.Equal(t, store.ErrUserNotFound, err)
	})

	t.Run("get returns copy of user", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		user := &models.User{
			UserID:   uuid.Must(uuid.NewV7()),
			Name:     "Lisa",
			TenantID: "T1",
			Role:     models.RoleStudent,
		}

		require.NoError(t, st.Create(ctx, user))

		retrieved1, _ := st.Get(ctx, user.UserID)
		retrieved1.TenantID = "modified"

		retrieved2, _ := st.Get(ctx, user.UserID)
		require.Equal(t, "T1", retrieved2.TenantID)
	})
}

func TestMemoryUserStore_UpdateTenantID(t *testing.T) {
	t.Run("update tenant id", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		user := &models.User{
			UserID:   uuid.Must(uuid.NewV7()),
			Name:     "Lisa",
			TenantID: "T1",
			Role:     models.RoleStudent,
		}

		require.NoError(t, st.Create(ctx, user))

		err := st.UpdateTenantID(ctx, user.UserID, "T2")
		require.NoError(t, err)

		retrieved, _ := st.Get(ctx, user.UserID)
		require.Equal(t, "T2", retrieved.TenantID)
	})

	t.Run("writing the same value twice is a no-op", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		user := &models.User{
			UserID:   uuid.Must(uuid.NewV7()),
			Name:     "Lisa",
			TenantID: "T1",
			Role:     models.RoleStudent,
		}

		require.NoError(t, st.Create(ctx, user))
		require.NoError(t, st.UpdateTenantID(ctx, user.UserID, "T2"))

		retrieved1, _ := st.Get(ctx, user.UserID)

		require.NoError(t, st.UpdateTenantID(ctx, user.UserID, "T2"))

		retrieved2, _ := st.Get(ctx, user.UserID)
		require.Equal(t, retrieved1.TenantID, retrieved2.TenantID)
		require.Equal(t, retrieved1.UpdatedAt, retrieved2.UpdatedAt)
	})

	t.Run("update tenant id for nonexistent user returns error", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		err := st.UpdateTenantID(ctx, uuid.Must(uuid.NewV7()), "T2")
		require.Error(t, err)
		require.Equal(t, store.ErrUserNotFound, err)
	})
}

func TestMemoryUserStore_ListByOrg(t *testing.T) {
	t.Run("list users by organization", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		orgA := uuid.Must(uuid.NewV7())
		orgB := uuid.Must(uuid.NewV7())

		users := []*models.User{
			{UserID: uuid.Must(uuid.NewV7()), Name: "A1", OrgID: &orgA, Role: models.RoleStudent},
			{UserID: uuid.Must(uuid.NewV7()), Name: "A2", OrgID: &orgA, Role: models.RoleTeacher},
			{UserID: uuid.Must(uuid.NewV7()), Name: "B1", OrgID: &orgB, Role: models.RoleStudent},
			{UserID: uuid.Must(uuid.NewV7()), Name: "Legacy", Role: models.RoleStudent},
		}

		for _, u := range users {
			require.NoError(t, st.Create(ctx, u))
		}

		result, err := st.ListByOrg(ctx, orgA)
		require.NoError(t, err)
		require.Len(t, result, 2)
	})

	t.Run("list empty result", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		result, err := st.ListByOrg(ctx, uuid.Must(uuid.NewV7()))
		require.NoError(t, err)
		require.Empty(t, result)
	})
}

func TestMemoryUserStoreImplementsInterface(t *testing.T) {
	var _ store.UserStore = (*UserStore)(nil)
}
