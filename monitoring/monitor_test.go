package monitoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sarchlab/cachemap/mapping"
	"github.com/sarchlab/cachemap/runner"
	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		router *mux.Router
	)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}

		req := httptest.NewRequest(method, path, reader)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetOutput(io.Discard)

		m = NewMonitor(runner.MakeBuilder().Build()).WithLogger(logger)
		router = m.Router()
	})

	It("should list simulators", func() {
		rec := serve(http.MethodGet, "/api/simulators", "")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"direct", "set-associative"}))
	})

	It("should run a direct simulation", func() {
		rec := serve(http.MethodPost, "/api/run/direto",
			`{"total_lines": 5, "trace": [33, 11, 3, 5]}`)

		Expect(rec.Code).To(Equal(http.StatusOK))

		var result mapping.Result
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Stats).To(Equal(mapping.Stats{TotalAccesses: 4, Misses: 4}))
		Expect(result.Events[2].Evicted).To(Equal(uint64(33)))
		Expect(m.NumRuns()).To(Equal(uint64(1)))
	})

	It("should run a comparison", func() {
		rec := serve(http.MethodPost, "/api/run/compare",
			`{"total_lines": 4, "set_size": 2, "trace": [0, 4, 0, 4]}`)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"set_associative"`))
		Expect(rec.Body.String()).To(ContainSubstring(`"outcome":"hit"`))
	})

	It("should reject bad geometries", func() {
		rec := serve(http.MethodPost, "/api/run/associative",
			`{"total_lines": 6, "set_size": 4, "trace": [1]}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("evenly divide"))
		Expect(m.NumRuns()).To(BeZero())
	})

	It("should reject malformed bodies", func() {
		rec := serve(http.MethodPost, "/api/run/direct", `{"trace": "x"}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject unknown modes", func() {
		rec := serve(http.MethodPost, "/api/run/random", `{}`)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should report when nothing has run", func() {
		rec := serve(http.MethodGet, "/api/last", "")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should serialize the last result", func() {
		serve(http.MethodPost, "/api/run/direct",
			`{"total_lines": 2, "trace": [1, 1]}`)

		rec := serve(http.MethodGet, "/api/last", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should report process resources", func() {
		rec := serve(http.MethodGet, "/api/resource", "")

		Expect(rec.Code).To(Equal(http.StatusOK))

		rsp := resourceRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should replace low port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should start and stop a server", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())
		defer m.StopServer()

		rsp, err := http.Get(url + "/api/simulators")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})
