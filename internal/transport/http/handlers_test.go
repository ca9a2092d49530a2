package httptransport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"shifttrust/internal/binding"
	"shifttrust/internal/identity"
	"shifttrust/internal/platform/logger"
	"shifttrust/internal/risk"
	"shifttrust/internal/shift"
	"shifttrust/internal/verify"
	"shifttrust/pkg/testutil"
)

type HandlersSuite struct {
	suite.Suite
	router http.Handler

	workerID     string
	supervisorID string
	customerID   string
	officerID    string
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	log := logger.New()
	identities := identity.NewService(identity.NewInMemoryStore(), nil, nil)
	complaints := risk.NewInMemoryComplaintStore()
	bindings := binding.NewService(binding.NewInMemoryStore(), identities, nil, nil)
	shifts := shift.NewService(shift.NewInMemoryStore(), bindings, identities, complaints, nil, nil)
	verifier := verify.NewService(verify.NewInMemoryStore(), identities, bindings, shifts, nil, nil)

	s.router = NewRouter(NewHandler(identities, bindings, shifts, verifier, complaints, nil, log))

	s.workerID = s.registerAs("worker", "Asha Verma", "+15550001111")
	s.supervisorID = s.registerAs("supervisor", "Ravi Nair", "+15550002222")
	s.customerID = s.registerAs("customer", "Ben Okafor", "+15550003333")
	s.officerID = s.registerAs("police", "Officer Reyes", "+15550004444")
}

func (s *HandlersSuite) registerAs(role, name, phone string) string {
	rr := s.post("/register", map[string]any{"role": role, "name": name, "phone": phone})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var resp struct {
		UUID string `json:"uuid"`
	}
	testutil.DecodeJSON(s.T(), rr, &resp)
	s.Require().NotEmpty(resp.UUID)
	return resp.UUID
}

func (s *HandlersSuite) post(path string, body any) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, body)
	return testutil.DoRequest(s.router, req)
}

func (s *HandlersSuite) get(path string) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), http.MethodGet, path, nil)
	return testutil.DoRequest(s.router, req)
}

func (s *HandlersSuite) bindWorker() {
	rr := s.post("/workplace/bind", map[string]any{
		"worker_uuid":   s.workerID,
		"workplace":     "Harbor Cafe",
		"location":      "downtown",
		"supervisor_id": s.supervisorID,
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
}

func (s *HandlersSuite) startShift() (shiftID, token string) {
	s.bindWorker()
	rr := s.post("/shift/start", map[string]any{
		"worker_uuid":   s.workerID,
		"supervisor_id": s.supervisorID,
		"workplace":     "Harbor Cafe",
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var resp struct {
		Shift struct {
			ShiftID string `json:"shift_id"`
			Token   string `json:"stt"`
		} `json:"shift"`
	}
	testutil.DecodeJSON(s.T(), rr, &resp)
	return resp.Shift.ShiftID, resp.Shift.Token
}

func (s *HandlersSuite) TestRegister() {
	s.Run("invalid body is a bad request", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/register", nil)
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("duplicate phone maps to conflict", func() {
		rr := s.post("/register", map[string]any{
			"role": "worker", "name": "Dana Iqbal", "phone": "+15550001111",
		})
		s.Equal(http.StatusConflict, rr.Code)
	})

	s.Run("unknown role maps to bad request", func() {
		rr := s.post("/register", map[string]any{
			"role": "manager", "name": "Dana Iqbal", "phone": "+15550005555",
		})
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlersSuite) TestCheckPhone() {
	rr := s.get("/register/check/+15550001111")
	s.Equal(http.StatusOK, rr.Code)
	var resp struct {
		Registered bool   `json:"registered"`
		UUID       string `json:"uuid"`
	}
	testutil.DecodeJSON(s.T(), rr, &resp)
	s.True(resp.Registered)
	s.Equal(s.workerID, resp.UUID)

	rr = s.get("/register/check/+15559999999")
	s.Equal(http.StatusOK, rr.Code)
	testutil.DecodeJSON(s.T(), rr, &resp)
	s.False(resp.Registered)
}

func (s *HandlersSuite) TestBindEndpoints() {
	s.bindWorker()

	s.Run("double bind conflicts", func() {
		rr := s.post("/workplace/bind", map[string]any{
			"worker_uuid":   s.workerID,
			"workplace":     "Other Cafe",
			"location":      "uptown",
			"supervisor_id": s.supervisorID,
		})
		s.Equal(http.StatusConflict, rr.Code)
	})

	s.Run("binding lookup by worker", func() {
		rr := s.get("/workplace/binding/" + s.workerID)
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			Bound bool `json:"bound"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.True(resp.Bound)
	})

	s.Run("bindings list by supervisor carries worker names", func() {
		rr := s.get("/workplace/bindings/" + s.supervisorID)
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			SupervisorName string `json:"supervisor_name"`
			Count          int    `json:"count"`
			Bindings       []struct {
				WorkerName string `json:"worker_name"`
				Workplace  string `json:"workplace"`
			} `json:"bindings"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.Equal(1, resp.Count)
		s.Equal("Ravi Nair", resp.SupervisorName)
		s.Require().Len(resp.Bindings, 1)
		s.Equal("Asha Verma", resp.Bindings[0].WorkerName)
		s.Equal("Harbor Cafe", resp.Bindings[0].Workplace)
	})

	s.Run("bindings list rejects an unknown supervisor", func() {
		rr := s.get("/workplace/bindings/9f2d11aa-0000-0000-0000-000000000000")
		s.Equal(http.StatusNotFound, rr.Code)
	})
}

func (s *HandlersSuite) TestShiftLifecycle() {
	shiftID, token := s.startShift()
	s.NotEmpty(token)

	s.Run("status shows the active shift", func() {
		rr := s.get("/shift/status/" + s.workerID)
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			Active bool   `json:"active"`
			Token  string `json:"stt"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.True(resp.Active)
		s.Equal(token, resp.Token)
	})

	s.Run("start while active conflicts", func() {
		rr := s.post("/shift/start", map[string]any{
			"worker_uuid":   s.workerID,
			"supervisor_id": s.supervisorID,
			"workplace":     "Harbor Cafe",
		})
		s.Equal(http.StatusConflict, rr.Code)
	})

	s.Run("end then end again", func() {
		rr := s.post("/shift/end", map[string]any{
			"shift_id": shiftID, "supervisor_id": s.supervisorID,
		})
		s.Equal(http.StatusOK, rr.Code)

		rr = s.post("/shift/end", map[string]any{
			"shift_id": shiftID, "supervisor_id": s.supervisorID,
		})
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlersSuite) TestVerifyWorker() {
	_, token := s.startShift()

	s.Run("customer scan of active shift verifies", func() {
		rr := s.post("/verify/worker", map[string]any{
			"stt": token, "customer_uuid": s.customerID,
		})
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			Verified   bool   `json:"verified"`
			WorkerName string `json:"worker_name"`
			Employer   string `json:"employer"`
			RiskColor  string `json:"risk_color"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.True(resp.Verified)
		s.Equal("Asha Verma", resp.WorkerName)
		s.Equal("Harbor Cafe", resp.Employer)
		s.NotEmpty(resp.RiskColor)
	})

	s.Run("garbage token is a 200 with verified false", func() {
		rr := s.post("/verify/worker", map[string]any{
			"stt": "garbage", "customer_uuid": s.customerID,
		})
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			Verified bool `json:"verified"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.False(resp.Verified)
	})

	s.Run("worker scanning as customer is rejected", func() {
		rr := s.post("/verify/worker", map[string]any{
			"stt": token, "customer_uuid": s.workerID,
		})
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlersSuite) TestPoliceEndpoints() {
	_, token := s.startShift()

	s.Run("police scan returns the extended projection", func() {
		rr := s.post("/police/scan", map[string]any{
			"stt": token, "officer_uuid": s.officerID,
		})
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			Verified       bool           `json:"verified"`
			Identity       map[string]any `json:"identity"`
			SupervisorName string         `json:"supervisor_name"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.True(resp.Verified)
		s.Equal("Asha Verma", resp.Identity["name"])
		s.Equal("Ravi Nair", resp.SupervisorName)
	})

	s.Run("customer on the police path is forbidden", func() {
		rr := s.post("/police/scan", map[string]any{
			"stt": token, "officer_uuid": s.customerID,
		})
		s.Equal(http.StatusForbidden, rr.Code)
	})

	s.Run("active workers lists the worker on shift", func() {
		rr := s.get("/police/active-workers")
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			Count int `json:"count"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.Equal(1, resp.Count)
	})

	s.Run("events feed records the scans", func() {
		rr := s.get("/police/events")
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			Count int `json:"count"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.GreaterOrEqual(resp.Count, 1)
	})
}

func (s *HandlersSuite) TestComplaints() {
	rr := s.post("/complaints", map[string]any{
		"worker_uuid": s.workerID, "reported_by": s.customerID,
	})
	s.Equal(http.StatusCreated, rr.Code)
	var resp struct {
		Count int `json:"complaint_count"`
	}
	testutil.DecodeJSON(s.T(), rr, &resp)
	s.Equal(1, resp.Count)

	s.Run("complaint against a non-worker is rejected", func() {
		rr := s.post("/complaints", map[string]any{
			"worker_uuid": s.customerID, "reported_by": s.workerID,
		})
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlersSuite) TestProfile() {
	s.bindWorker()

	rr := s.get("/profile/" + s.workerID)
	s.Equal(http.StatusOK, rr.Code)
	var resp map[string]any
	testutil.DecodeJSON(s.T(), rr, &resp)
	s.Equal("Asha Verma", resp["name"])
	s.Contains(resp, "worker_data")

	rr = s.get(fmt.Sprintf("/profile/%s", s.customerID))
	s.Equal(http.StatusOK, rr.Code)
	testutil.DecodeJSON(s.T(), rr, &resp)
	s.Contains(resp, "customer_data")

	s.Run("unknown id is not found", func() {
		rr := s.get("/profile/6b1e2cb4-0000-0000-0000-000000000000")
		s.Equal(http.StatusNotFound, rr.Code)
	})

	s.Run("malformed id is a bad request", func() {
		rr := s.get("/profile/not-a-uuid")
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlersSuite) TestShiftHistory() {
	shiftID, _ := s.startShift()

	s.Run("worker profile carries shift history", func() {
		rr := s.get("/profile/" + s.workerID)
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			WorkerData struct {
				ShiftHistory []map[string]any `json:"shift_history"`
				TotalShifts  int              `json:"total_shifts"`
			} `json:"worker_data"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.Equal(1, resp.WorkerData.TotalShifts)
		s.Require().Len(resp.WorkerData.ShiftHistory, 1)
		s.Equal(shiftID, resp.WorkerData.ShiftHistory[0]["shift_id"])
	})

	s.Run("history lists ended shifts newest first", func() {
		rr := s.post("/shift/end", map[string]any{
			"shift_id": shiftID, "supervisor_id": s.supervisorID,
		})
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

		rr = s.get("/profile/" + s.workerID + "/shifts")
		s.Equal(http.StatusOK, rr.Code)
		var resp struct {
			UUID   string           `json:"uuid"`
			Shifts []map[string]any `json:"shifts"`
			Count  int              `json:"count"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.Equal(s.workerID, resp.UUID)
		s.Equal(1, resp.Count)
		s.Require().Len(resp.Shifts, 1)
		s.Equal(shiftID, resp.Shifts[0]["shift_id"])
		s.Equal(false, resp.Shifts[0]["active"])
		s.Contains(resp.Shifts[0], "end")
	})

	s.Run("unknown worker is not found", func() {
		rr := s.get("/profile/6b1e2cb4-0000-0000-0000-000000000000/shifts")
		s.Equal(http.StatusNotFound, rr.Code)
	})
}

func (s *HandlersSuite) TestHealthz() {
	rr := s.get("/healthz")
	s.Equal(http.StatusOK, rr.Code)
}
