package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/limtzeyng/HERizon/core/config"
	"github.com/limtzeyng/HERizon/internal/http/router"
	"github.com/limtzeyng/HERizon/internal/service"
)

var _ = Describe("SetupRoutes", func() {
	var engine *gin.Engine

	call := func(method, path string, body any) (int, map[string]any) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return w.Code, resp
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		services := service.NewServices(service.ServicesConfig{
			Delivery: config.DeliveryConfig{QueueCapacity: 50, ResponseLogCapacity: 30},
		})
		router.SetupRoutes(engine, services, router.RouterConfig{})
	})

	It("serves health", func() {
		code, resp := call(http.MethodGet, "/health", nil)
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["status"]).To(Equal("ok"))
	})

	It("delivers a role event once", func() {
		code, resp := call(http.MethodPost, "/api/send", map[string]string{"event": "URGENT", "target": "LEFT"})
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["ok"]).To(BeTrue())
		Expect(resp["left_queue_size"]).To(BeEquivalentTo(1))

		_, resp = call(http.MethodGet, "/api/poll?role=LEFT", nil)
		Expect(resp["event"]).To(Equal("URGENT"))
		Expect(resp["target"]).To(Equal("LEFT"))
		Expect(resp["task_text"]).To(BeNil())
		Expect(resp["event_id"]).NotTo(BeNil())

		_, resp = call(http.MethodGet, "/api/poll?role=LEFT", nil)
		Expect(resp["event"]).To(BeNil())
	})

	It("rejects a task without text", func() {
		code, resp := call(http.MethodPost, "/api/send", map[string]string{"event": "TASK_ASSIGNED", "target": "ALL"})
		Expect(code).To(Equal(http.StatusBadRequest))
		Expect(resp["ok"]).To(BeFalse())
		Expect(resp["error"]).NotTo(BeEmpty())
	})

	It("delivers a task with its ids to a broadcast poller", func() {
		_, resp := call(http.MethodPost, "/api/send", map[string]string{"event": "TASK_ASSIGNED", "task_text": "restock aisle 4"})
		taskID := resp["task_id"]
		Expect(taskID).NotTo(BeNil())

		_, resp = call(http.MethodGet, "/api/poll", nil)
		Expect(resp["event"]).To(Equal("TASK_ASSIGNED"))
		Expect(resp["target"]).To(Equal("ALL"))
		Expect(resp["task_text"]).To(Equal("restock aisle 4"))
		Expect(resp["task_id"]).To(Equal(taskID))
	})

	It("shows submissions and responses on status without consuming", func() {
		call(http.MethodPost, "/api/send", map[string]string{"event": "NAME_CALLED"})
		for _, label := range []string{"X", "Y", "Z"} {
			code, _ := call(http.MethodPost, "/api/response", map[string]string{"label": label, "role": "right"})
			Expect(code).To(Equal(http.StatusOK))
		}

		_, status := call(http.MethodGet, "/api/status", nil)
		Expect(status["latest_event"]).To(Equal("NAME_CALLED"))
		Expect(status["latest_target"]).To(Equal("ALL"))
		Expect(status["queue_size"]).To(BeEquivalentTo(1))

		lines := status["responses"].([]any)
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(HavePrefix("[RIGHT] [PHONE] Z (-)"))
		Expect(lines[2]).To(HavePrefix("[RIGHT] [PHONE] X (-)"))

		_, status = call(http.MethodGet, "/api/status", nil)
		Expect(status["queue_size"]).To(BeEquivalentTo(1))
	})

	It("rejects a response without code or label", func() {
		code, resp := call(http.MethodPost, "/api/response", map[string]string{"user": "Phone user"})
		Expect(code).To(Equal(http.StatusBadRequest))
		Expect(resp["ok"]).To(BeFalse())
	})

	It("serves request schemas", func() {
		code, resp := call(http.MethodGet, "/api/schema/response", nil)
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["properties"]).To(HaveKey("custom_pattern"))
	})
})
