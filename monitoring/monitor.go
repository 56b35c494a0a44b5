// Package monitoring turns the trace runner into a small HTTP server that can
// run simulations on request and report on the running process.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/cachemap/mapping"
	"github.com/sarchlab/cachemap/runner"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"
)

// Monitor serves simulation requests over HTTP.
type Monitor struct {
	runner          *runner.Runner
	logger          logrus.FieldLogger
	portNumber      int
	profileDuration time.Duration

	lock     sync.Mutex
	last     any
	numRuns  uint64
	listener net.Listener
}

// NewMonitor creates a new Monitor that runs simulations with r.
func NewMonitor(r *runner.Runner) *Monitor {
	return &Monitor{
		runner:          r,
		logger:          logrus.StandardLogger(),
		profileDuration: time.Second,
	}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// replaced by a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 && portNumber != 0 {
		m.logger.Warnf("Port number %d is not allowed. "+
			"Using a random port instead.", portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger of the monitor.
func (m *Monitor) WithLogger(logger logrus.FieldLogger) *Monitor {
	m.logger = logger
	return m
}

// WithProfileDuration sets how long the profile endpoint samples the CPU.
func (m *Monitor) WithProfileDuration(d time.Duration) *Monitor {
	m.profileDuration = d
	return m
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/simulators", m.listSimulators).Methods(http.MethodGet)
	r.HandleFunc("/api/run/{mode}", m.run).Methods(http.MethodPost)
	r.HandleFunc("/api/last", m.lastResult).Methods(http.MethodGet)
	r.HandleFunc("/api/last/{field}", m.lastResultField).
		Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts listening in the background and returns the URL of the
// server.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":" + strconv.Itoa(m.portNumber)

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	m.listener = listener

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.logger.WithField("url", url).Info("Monitoring server started")

	go func() {
		err := http.Serve(listener, m.Router())
		if err != nil && !errors.Is(err, net.ErrClosed) {
			m.logger.WithError(err).Error("Monitoring server stopped")
		}
	}()

	return url, nil
}

// StopServer closes the listener opened by StartServer.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	return m.listener.Close()
}

// NumRuns returns the number of simulations served.
func (m *Monitor) NumRuns() uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.numRuns
}

func (m *Monitor) listSimulators(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	for _, s := range m.runner.Simulators() {
		names = append(names, s.Name())
	}

	writeJSON(w, http.StatusOK, names)
}

type runReq struct {
	TotalLines int      `json:"total_lines"`
	SetSize    int      `json:"set_size"`
	Trace      []uint64 `json:"trace"`
}

type errorRsp struct {
	Error string `json:"error"`
}

func (m *Monitor) run(w http.ResponseWriter, r *http.Request) {
	mode, err := runner.ParseMode(mux.Vars(r)["mode"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorRsp{Error: err.Error()})
		return
	}

	req := runReq{}

	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRsp{Error: err.Error()})
		return
	}

	g := mapping.Geometry{TotalLines: req.TotalLines, SetSize: req.SetSize}

	m.lock.Lock()
	defer m.lock.Unlock()

	var rsp any
	if mode == runner.ModeCompare {
		var cmp runner.Comparison
		cmp, err = m.runner.Compare(g, req.Trace)
		rsp = &cmp
	} else {
		var result mapping.Result
		result, err = m.runner.Run(mode, g, req.Trace)
		rsp = &result
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mapping.ErrConfig) {
			status = http.StatusBadRequest
		}

		writeJSON(w, status, errorRsp{Error: err.Error()})

		return
	}

	m.last = rsp
	m.numRuns++

	m.logger.WithFields(logrus.Fields{
		"mode":        mode,
		"total_lines": g.TotalLines,
		"set_size":    g.SetSize,
		"accesses":    len(req.Trace),
	}).Debug("Served simulation")

	writeJSON(w, http.StatusOK, rsp)
}

func (m *Monitor) lastResult(w http.ResponseWriter, _ *http.Request) {
	m.serializeLast(w, nil)
}

func (m *Monitor) lastResultField(w http.ResponseWriter, r *http.Request) {
	fields := strings.Split(mux.Vars(r)["field"], ".")
	m.serializeLast(w, fields)
}

func (m *Monitor) serializeLast(w http.ResponseWriter, fields []string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.last == nil {
		writeJSON(w, http.StatusNotFound, errorRsp{Error: "no simulation yet"})
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.last)
	serializer.SetMaxDepth(4)

	if len(fields) > 0 {
		err := serializer.SetEntryPoint(fields)
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorRsp{Error: err.Error()})
			return
		}
	}

	buf := bytes.NewBuffer(nil)

	err := serializer.Serialize(buf)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			errorRsp{Error: err.Error()})

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(buf.Bytes())
	m.logOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			errorRsp{Error: err.Error()})

		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			errorRsp{Error: err.Error()})

		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			errorRsp{Error: err.Error()})

		return
	}

	writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeJSON(w, http.StatusConflict, errorRsp{Error: err.Error()})
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			errorRsp{Error: err.Error()})

		return
	}

	writeJSON(w, http.StatusOK, prof)
}

func (m *Monitor) logOnErr(err error) {
	if err != nil {
		m.logger.WithError(err).Warn("Failed to write response")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, `{"error":%q}`, err.Error())

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(bytes)
}
