package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	api "github.com/clipforge/clipforge/api/v1"
	"github.com/clipforge/clipforge/internal/auth"
	"github.com/clipforge/clipforge/internal/config"
	handlers "github.com/clipforge/clipforge/internal/handlers/v1"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/clipforge/clipforge/internal/store"
)

func postJSON(handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	Expect(err).To(BeNil())

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeEnvelope(rec *httptest.ResponseRecorder, data any) api.Envelope {
	var envelope api.Envelope
	Expect(json.Unmarshal(rec.Body.Bytes(), &envelope)).To(BeNil())
	if data != nil && envelope.Data != nil {
		Expect(json.Unmarshal(envelope.Data, data)).To(BeNil())
	}
	return envelope
}

var _ = Describe("auth handler", Ordered, func() {
	var (
		s       store.Store
		gormdb  *gorm.DB
		userSrv *service.UserService
		handler *handlers.ServiceHandler
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		issuer := auth.NewTokenIssuer("test-secret", time.Hour)
		userSrv = service.NewUserService(s, issuer)
		jobSrv := service.NewJobService(s, &fakeObjectStore{}, &fakeResolver{}, &fakeQueue{}, maxTestFileSize)
		handler = handlers.NewServiceHandler(userSrv, jobSrv, maxTestFileSize)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from users;")
	})

	Context("signup", func() {
		It("creates the account and returns a token", func() {
			rec := postJSON(handler.Signup, "/auth/signup", api.SignupRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "s3cret123",
			})
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var data api.AuthData
			envelope := decodeEnvelope(rec, &data)
			Expect(envelope.Success).To(BeTrue())
			Expect(data.Token).ToNot(BeEmpty())
			Expect(data.User.Username).To(Equal("alice"))
			_, err := uuid.Parse(data.User.ID)
			Expect(err).To(BeNil())
		})

		It("rejects a short password", func() {
			rec := postJSON(handler.Signup, "/auth/signup", api.SignupRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "short",
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			envelope := decodeEnvelope(rec, nil)
			Expect(envelope.Success).To(BeFalse())
		})

		It("rejects a duplicate account", func() {
			req := api.SignupRequest{Username: "alice", Email: "alice@example.com", Password: "s3cret123"}
			Expect(postJSON(handler.Signup, "/auth/signup", req).Code).To(Equal(http.StatusCreated))

			rec := postJSON(handler.Signup, "/auth/signup", req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			envelope := decodeEnvelope(rec, nil)
			Expect(envelope.Message).To(Equal("User already exists"))
		})
	})

	Context("login", func() {
		BeforeEach(func() {
			rec := postJSON(handler.Signup, "/auth/signup", api.SignupRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "s3cret123",
			})
			Expect(rec.Code).To(Equal(http.StatusCreated))
		})

		It("returns the user with a fresh token", func() {
			rec := postJSON(handler.Login, "/auth/login", api.LoginRequest{
				Email:    "alice@example.com",
				Password: "s3cret123",
			})
			Expect(rec.Code).To(Equal(http.StatusOK))

			var data api.AuthData
			decodeEnvelope(rec, &data)
			Expect(data.Token).ToNot(BeEmpty())
			Expect(data.User.Email).To(Equal("alice@example.com"))
		})

		It("rejects a wrong password", func() {
			rec := postJSON(handler.Login, "/auth/login", api.LoginRequest{
				Email:    "alice@example.com",
				Password: "wrong-password",
			})
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("me", func() {
		It("returns the caller's profile", func() {
			var data api.AuthData
			decodeEnvelope(postJSON(handler.Signup, "/auth/signup", api.SignupRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "s3cret123",
			}), &data)

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req = req.WithContext(auth.NewUserContext(req.Context(), auth.User{
				ID:       uuid.MustParse(data.User.ID),
				Username: data.User.Username,
				Email:    data.User.Email,
			}))
			rec := httptest.NewRecorder()
			handler.Me(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var me api.UserData
			decodeEnvelope(rec, &me)
			Expect(me.User.Email).To(Equal("alice@example.com"))
		})

		It("rejects a token whose account is gone", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req = req.WithContext(auth.NewUserContext(req.Context(), auth.User{ID: uuid.New()}))
			rec := httptest.NewRecorder()
			handler.Me(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
