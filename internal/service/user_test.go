package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/auth"
	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/clipforge/clipforge/internal/store"
)

var _ = Describe("user service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.UserService
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		issuer := auth.NewTokenIssuer("test-secret", time.Hour)
		srv = service.NewUserService(s, issuer)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from users;")
	})

	Context("signup", func() {
		It("creates the account and issues a token", func() {
			user, token, err := srv.Signup(context.TODO(), "alice", "alice@example.com", "s3cret123")
			Expect(err).To(BeNil())
			Expect(user.ID).ToNot(Equal(uuid.UUID{}))
			Expect(token).ToNot(BeEmpty())

			// the hash never equals the raw password
			Expect(user.PasswordHash).ToNot(Equal("s3cret123"))
		})

		It("names the colliding field on a duplicate email", func() {
			_, _, err := srv.Signup(context.TODO(), "alice", "alice@example.com", "s3cret123")
			Expect(err).To(BeNil())

			_, _, err = srv.Signup(context.TODO(), "someone-else", "alice@example.com", "s3cret123")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrDuplicateUser{}))
			Expect(err.(*service.ErrDuplicateUser).Field).To(Equal("email"))
		})

		It("names the colliding field on a duplicate username", func() {
			_, _, err := srv.Signup(context.TODO(), "alice", "alice@example.com", "s3cret123")
			Expect(err).To(BeNil())

			_, _, err = srv.Signup(context.TODO(), "alice", "other@example.com", "s3cret123")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrDuplicateUser{}))
			Expect(err.(*service.ErrDuplicateUser).Field).To(Equal("username"))
		})
	})

	Context("login", func() {
		It("verifies the password and issues a fresh token", func() {
			_, _, err := srv.Signup(context.TODO(), "alice", "alice@example.com", "s3cret123")
			Expect(err).To(BeNil())

			user, token, err := srv.Login(context.TODO(), "alice@example.com", "s3cret123")
			Expect(err).To(BeNil())
			Expect(user.Username).To(Equal("alice"))
			Expect(token).ToNot(BeEmpty())
		})

		It("rejects a wrong password and an unknown email the same way", func() {
			_, _, err := srv.Signup(context.TODO(), "alice", "alice@example.com", "s3cret123")
			Expect(err).To(BeNil())

			_, _, badPassword := srv.Login(context.TODO(), "alice@example.com", "wrong")
			Expect(badPassword).To(BeAssignableToTypeOf(&service.ErrInvalidCredentials{}))

			_, _, unknownEmail := srv.Login(context.TODO(), "nobody@example.com", "s3cret123")
			Expect(unknownEmail).To(BeAssignableToTypeOf(&service.ErrInvalidCredentials{}))

			Expect(badPassword.Error()).To(Equal(unknownEmail.Error()))
		})
	})

	Context("me", func() {
		It("resolves the caller's profile", func() {
			created, _, err := srv.Signup(context.TODO(), "alice", "alice@example.com", "s3cret123")
			Expect(err).To(BeNil())

			user, err := srv.Me(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(user.Email).To(Equal("alice@example.com"))
		})

		It("returns not found when the account is gone", func() {
			_, err := srv.Me(context.TODO(), uuid.New())
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})
	})
})
