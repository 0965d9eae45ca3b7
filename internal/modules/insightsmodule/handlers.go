package insightsmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/soundfoundry/releasedesk/internal/api"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/events"
	"github.com/soundfoundry/releasedesk/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (m *Module) getActivity(c *gin.Context) {
	items := m.activity.Recent()
	c.JSON(http.StatusOK, gin.H{
		"activity": items,
		"count":    len(items),
	})
}

// streamActivity upgrades to a websocket and forwards live bus events. The
// connection closes when the client goes away or a write fails.
func (m *Module) streamActivity(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan events.Event, 32)
	unsubscribe := m.eventBus.Subscribe("*", func(event events.Event) {
		select {
		case send <- event:
		default:
		}
	})
	defer unsubscribe()

	// Reader goroutine notices the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event := <-send:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

func (m *Module) getSystem(c *gin.Context) {
	snapshot := gin.H{}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snapshot["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snapshot["memory"] = gin.H{
			"total":        vm.Total,
			"used":         vm.Used,
			"used_percent": vm.UsedPercent,
		}
	}
	if usage, err := disk.Usage("/"); err == nil {
		snapshot["disk"] = gin.H{
			"total":        usage.Total,
			"used":         usage.Used,
			"used_percent": usage.UsedPercent,
		}
	}

	c.JSON(http.StatusOK, snapshot)
}

func (m *Module) getStats(c *gin.Context) {
	type statusCount struct {
		Status database.ReleaseStatus `json:"status"`
		Count  int64                  `json:"count"`
	}

	var counts []statusCount
	err := m.db.WithContext(c.Request.Context()).
		Model(&database.Release{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		api.RespondWithInternalError(c, "failed to aggregate release stats", err)
		return
	}

	byStatus := make(map[database.ReleaseStatus]int64, len(counts))
	var total int64
	for _, row := range counts {
		byStatus[row.Status] = row.Count
		total += row.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"by_status": byStatus,
	})
}

func (m *Module) getAccounting(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"available": false,
		"message":   "accounting reports are not available yet",
	})
}

func (m *Module) getMarketing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"available": false,
		"message":   "marketing tools are not available yet",
	})
}
