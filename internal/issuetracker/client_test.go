package issuetracker_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/issuetracker"
)

func TestIssueTrackerClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IssueTrackerClient Suite")
}

var _ = Describe("IssueTracker Client", func() {
	var (
		server *httptest.Server
		client *issuetracker.Client
	)

	newClient := func(baseURL string) *issuetracker.Client {
		return issuetracker.NewClient(issuetracker.Config{
			BaseURL:  baseURL,
			APIToken: "test-token",
			Timeout:  2 * time.Second,
		}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	Describe("ListOpenIssues", func() {
		It("passes assignee, pagination and the token header", func() {
			var gotAuth, gotAssignee, gotOffset, gotPageSize string
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotAssignee = r.URL.Query().Get("assignee")
				gotOffset = r.URL.Query().Get("offset")
				gotPageSize = r.URL.Query().Get("page_size")

				json.NewEncoder(w).Encode(issuetracker.IssuePage{
					Issues: []issuetracker.Issue{
						{Key: "PROJ-1", Summary: "fix login", Status: "open", Assignee: "dev@example.com"},
					},
					Total: 1,
				})
			}))
			client = newClient(server.URL)

			page, err := client.ListOpenIssues(context.Background(), "dev@example.com", 10, 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(gotAuth).To(Equal("Bearer test-token"))
			Expect(gotAssignee).To(Equal("dev@example.com"))
			Expect(gotOffset).To(Equal("10"))
			Expect(gotPageSize).To(Equal("5"))
			Expect(page.Issues).To(HaveLen(1))
			Expect(page.Issues[0].Key).To(Equal("PROJ-1"))
			Expect(page.Offset).To(Equal(10))
			Expect(page.PageSize).To(Equal(5))
		})

		It("clamps pagination to sane defaults", func() {
			var gotOffset, gotPageSize string
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotOffset = r.URL.Query().Get("offset")
				gotPageSize = r.URL.Query().Get("page_size")
				json.NewEncoder(w).Encode(issuetracker.IssuePage{})
			}))
			client = newClient(server.URL)

			_, err := client.ListOpenIssues(context.Background(), "dev@example.com", -5, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(gotOffset).To(Equal("0"))
			Expect(gotPageSize).To(Equal("20"))
		})

		It("surfaces a tracker failure as an external error", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			client = newClient(server.URL)

			_, err := client.ListOpenIssues(context.Background(), "dev@example.com", 0, 20)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeIssueTrackerFailed))
			Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("UserExists", func() {
		It("reports a known email", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/users/exists"))
				Expect(r.URL.Query().Get("email")).To(Equal("dev@example.com"))
				json.NewEncoder(w).Encode(map[string]bool{"exists": true})
			}))
			client = newClient(server.URL)

			exists, err := client.UserExists(context.Background(), "dev@example.com")

			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("fails when the tracker is unreachable", func() {
			client = newClient("http://127.0.0.1:1")

			_, err := client.UserExists(context.Background(), "dev@example.com")

			Expect(err).To(HaveOccurred())
		})
	})
})
