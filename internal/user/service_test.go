package user_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserService Suite")
}

type mockUserRepo struct {
	users map[int64]*user.User
}

func (m *mockUserRepo) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) List() ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserRepo) Update(u *user.User) error {
	stored, ok := m.users[u.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	*stored = *u
	return nil
}

var _ = Describe("User Service", func() {
	var (
		repo      *mockUserRepo
		service   *user.Service
		admin     *auth.User
		developer *auth.User
	)

	BeforeEach(func() {
		repo = &mockUserRepo{users: map[int64]*user.User{
			1:  {ID: 1, Email: "admin@example.com", Name: "Admin", Role: auth.RoleAdmin, IsActive: true},
			10: {ID: 10, Email: "dev@example.com", Name: "Dev", Role: auth.RoleDeveloper, HourlyRate: 45, IsActive: true},
		}}
		service = user.NewService(repo, slog.New(slog.NewTextHandler(os.Stderr, nil)))
		admin = &auth.User{ID: 1, Role: auth.RoleAdmin}
		developer = &auth.User{ID: 10, Role: auth.RoleDeveloper}
	})

	Describe("GetProfile", func() {
		It("returns the caller's record", func() {
			u, err := service.GetProfile(developer)

			Expect(err).NotTo(HaveOccurred())
			Expect(u.Email).To(Equal("dev@example.com"))
		})
	})

	Describe("UpdateProfile", func() {
		It("changes the caller's name", func() {
			name := "Dev Eloper"
			u, err := service.UpdateProfile(developer, user.UpdateProfileDTO{Name: &name})

			Expect(err).NotTo(HaveOccurred())
			Expect(u.Name).To(Equal("Dev Eloper"))
		})

		It("rejects a blank name", func() {
			name := "  "
			_, err := service.UpdateProfile(developer, user.UpdateProfileDTO{Name: &name})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListUsers", func() {
		It("lists everyone for reviewers", func() {
			users, err := service.ListUsers(admin)

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
		})

		It("refuses developers", func() {
			_, err := service.ListUsers(developer)

			Expect(err).To(Equal(user.ErrNotAllowed))
		})
	})

	Describe("UpdateUser", func() {
		It("lets an admin change role and rate", func() {
			role := auth.RoleHR
			rate := 60.0
			u, err := service.UpdateUser(admin, developer.ID, user.UpdateUserDTO{
				Role:       &role,
				HourlyRate: &rate,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleHR))
			Expect(u.HourlyRate).To(Equal(60.0))
		})

		It("rejects an unknown role", func() {
			role := "superuser"
			_, err := service.UpdateUser(admin, developer.ID, user.UpdateUserDTO{Role: &role})

			Expect(err).To(HaveOccurred())
		})

		It("rejects a negative rate", func() {
			rate := -1.0
			_, err := service.UpdateUser(admin, developer.ID, user.UpdateUserDTO{HourlyRate: &rate})

			Expect(err).To(HaveOccurred())
		})

		It("refuses developers", func() {
			rate := 100.0
			_, err := service.UpdateUser(developer, developer.ID, user.UpdateUserDTO{HourlyRate: &rate})

			Expect(err).To(Equal(user.ErrNotAllowed))
		})

		It("reports an unknown target", func() {
			rate := 10.0
			_, err := service.UpdateUser(admin, 999, user.UpdateUserDTO{HourlyRate: &rate})

			Expect(err).To(Equal(user.ErrUserNotFound))
		})
	})

	Describe("HourlyRateFor", func() {
		It("resolves the stored rate", func() {
			rate, err := service.HourlyRateFor(developer.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(rate).To(Equal(45.0))
		})

		It("reports unknown users", func() {
			_, err := service.HourlyRateFor(999)

			Expect(err).To(Equal(user.ErrUserNotFound))
		})
	})
})
