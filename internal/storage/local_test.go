package storage_test

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/storage"
)

func TestLocalStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LocalStore Suite")
}

var _ = Describe("LocalStore", func() {
	var store *storage.LocalStore

	BeforeEach(func() {
		var err error
		store, err = storage.NewLocalStore(GinkgoT().TempDir(),
			slog.New(slog.NewTextHandler(os.Stderr, nil)))
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips a document", func() {
		Expect(store.Save("invoice_INV-20250314-0042_1741947000.pdf", strings.NewReader("content"))).To(Succeed())

		rc, err := store.Open("invoice_INV-20250314-0042_1741947000.pdf")
		Expect(err).NotTo(HaveOccurred())
		defer rc.Close()

		data, err := io.ReadAll(rc)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("content"))
	})

	It("reports missing documents", func() {
		_, err := store.Open("never-stored.pdf")

		Expect(err).To(Equal(storage.ErrDocumentMissing))
	})

	It("removes a document exactly once", func() {
		Expect(store.Save("doc.pdf", strings.NewReader("x"))).To(Succeed())

		Expect(store.Remove("doc.pdf")).To(Succeed())
		Expect(store.Remove("doc.pdf")).To(Equal(storage.ErrDocumentMissing))
	})

	It("strips directory components from names", func() {
		Expect(store.Save("../../escape.pdf", strings.NewReader("x"))).To(Succeed())

		rc, err := store.Open("escape.pdf")
		Expect(err).NotTo(HaveOccurred())
		rc.Close()
	})
})
