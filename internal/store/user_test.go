package store_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/internal/store/model"
)

var _ = Describe("user store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from users;")
	})

	Context("create", func() {
		It("successfully creates a user", func() {
			user, err := s.User().Create(context.TODO(), model.User{
				Username:     "alice",
				Email:        "alice@example.com",
				PasswordHash: "hash",
			})
			Expect(err).To(BeNil())
			Expect(user.ID).ToNot(Equal(uuid.UUID{}))
		})

		It("rejects a duplicate email", func() {
			_, err := s.User().Create(context.TODO(), model.User{
				Username:     "alice",
				Email:        "alice@example.com",
				PasswordHash: "hash",
			})
			Expect(err).To(BeNil())

			_, err = s.User().Create(context.TODO(), model.User{
				Username:     "alice2",
				Email:        "alice@example.com",
				PasswordHash: "hash",
			})
			Expect(err).To(Equal(store.ErrDuplicateKey))
		})

		It("rejects a duplicate username", func() {
			_, err := s.User().Create(context.TODO(), model.User{
				Username:     "alice",
				Email:        "alice@example.com",
				PasswordHash: "hash",
			})
			Expect(err).To(BeNil())

			_, err = s.User().Create(context.TODO(), model.User{
				Username:     "alice",
				Email:        "other@example.com",
				PasswordHash: "hash",
			})
			Expect(err).To(Equal(store.ErrDuplicateKey))
		})
	})

	Context("get", func() {
		It("finds a user by id", func() {
			created, err := s.User().Create(context.TODO(), model.User{
				Username:     "bob",
				Email:        "bob@example.com",
				PasswordHash: "hash",
			})
			Expect(err).To(BeNil())

			user, err := s.User().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(user.Username).To(Equal("bob"))
		})

		It("finds a user by email", func() {
			_, err := s.User().Create(context.TODO(), model.User{
				Username:     "bob",
				Email:        "bob@example.com",
				PasswordHash: "hash",
			})
			Expect(err).To(BeNil())

			user, err := s.User().GetByEmail(context.TODO(), "bob@example.com")
			Expect(err).To(BeNil())
			Expect(user.Username).To(Equal("bob"))
		})

		It("finds a user by email or username", func() {
			_, err := s.User().Create(context.TODO(), model.User{
				Username:     "bob",
				Email:        "bob@example.com",
				PasswordHash: "hash",
			})
			Expect(err).To(BeNil())

			user, err := s.User().GetByEmailOrUsername(context.TODO(), "nobody@example.com", "bob")
			Expect(err).To(BeNil())
			Expect(user.Email).To(Equal("bob@example.com"))
		})

		It("returns not found for an unknown user", func() {
			_, err := s.User().Get(context.TODO(), uuid.New())
			Expect(err).To(Equal(store.ErrRecordNotFound))

			_, err = s.User().GetByEmail(context.TODO(), "nobody@example.com")
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})
	})
})
