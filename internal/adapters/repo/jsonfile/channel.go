package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	RequestFileName    = "backend_request.json"
	ResponseFileName   = "backend_response.json"
	TaskBufferFileName = "task_buffer.json"
)

// Channel is the single-slot request/response mailbox plus the task buffer.
// Each file is overwritten wholesale; the per-path lock only orders writers in
// this process.
type Channel struct {
	dir          string
	requestPath  string
	responsePath string
	bufferPath   string
	logger       *zap.Logger
}

var _ ports.Channel = (*Channel)(nil)

func NewChannel(cfg *viper.Viper, logger *zap.Logger) (*Channel, error) {
	dir, err := config.Path(cfg, config.KeyChannelDir)
	if err != nil {
		return nil, fmt.Errorf("resolve channel dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Channel{
		dir:          dir,
		requestPath:  filepath.Join(dir, RequestFileName),
		responsePath: filepath.Join(dir, ResponseFileName),
		bufferPath:   filepath.Join(dir, TaskBufferFileName),
		logger:       logger,
	}, nil
}

func (c *Channel) Dir() string {
	return c.dir
}

func (c *Channel) RequestPath() string {
	return c.requestPath
}

func (c *Channel) ResponsePath() string {
	return c.responsePath
}

// ReadRequest returns the request currently in the slot. ok is false when the
// slot is empty, unreadable or holds no id.
func (c *Channel) ReadRequest(ctx context.Context) (domain.Request, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Request{}, false, err
	}

	var req domain.Request
	if !c.readSlot(c.requestPath, "request", &req) {
		return domain.Request{}, false, nil
	}
	if err := req.Validate(); err != nil {
		return domain.Request{}, false, nil
	}

	return req, true, nil
}

func (c *Channel) WriteRequest(ctx context.Context, req domain.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	return c.writeSlot(c.requestPath, "request", req)
}

func (c *Channel) ReadResponse(ctx context.Context) (domain.Response, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Response{}, false, err
	}

	var resp domain.Response
	if !c.readSlot(c.responsePath, "response", &resp) {
		return domain.Response{}, false, nil
	}
	if strings.TrimSpace(resp.ID) == "" {
		return domain.Response{}, false, nil
	}

	return resp, true, nil
}

func (c *Channel) WriteResponse(ctx context.Context, resp domain.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(resp.ID) == "" {
		return errors.New("response id is required")
	}

	return c.writeSlot(c.responsePath, "response", resp)
}

func (c *Channel) AppendTaskBuffer(ctx context.Context, tasks ...domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}
	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			return err
		}
	}

	mu := lockForPath(c.bufferPath)
	mu.Lock()
	defer mu.Unlock()

	buffered := c.readTaskBuffer()
	buffered = append(buffered, tasks...)

	return writeJSONFile(c.bufferPath, "task buffer", buffered)
}

// DrainTaskBuffer returns every buffered task and resets the file to [].
func (c *Channel) DrainTaskBuffer(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mu := lockForPath(c.bufferPath)
	mu.Lock()
	defer mu.Unlock()

	tasks := c.readTaskBuffer()
	if len(tasks) == 0 {
		return nil, nil
	}

	if err := writeJSONFile(c.bufferPath, "task buffer", []domain.Task{}); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (c *Channel) readSlot(path string, label string, out any) bool {
	mu := lockForPath(path)
	mu.RLock()
	defer mu.RUnlock()

	data, ok := c.readFile(path, label)
	if !ok {
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("decode "+label+" file, ignoring", zap.String("path", path), zap.Error(err))
		return false
	}

	return true
}

func (c *Channel) writeSlot(path string, label string, v any) error {
	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	return writeJSONFile(path, label, v)
}

// readTaskBuffer accepts task objects and bare strings; unusable entries are dropped.
func (c *Channel) readTaskBuffer() []domain.Task {
	data, ok := c.readFile(c.bufferPath, "task buffer")
	if !ok {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("decode task buffer file, ignoring", zap.String("path", c.bufferPath), zap.Error(err))
		return nil
	}

	tasks := make([]domain.Task, 0, len(raw))
	for _, entry := range raw {
		var task domain.Task
		var text string
		switch {
		case json.Unmarshal(entry, &text) == nil:
			task.Description = text
		case json.Unmarshal(entry, &task) == nil:
		default:
			c.logger.Warn("skip malformed task buffer entry", zap.ByteString("entry", entry))
			continue
		}

		if task.Validate() != nil {
			continue
		}
		tasks = append(tasks, task)
	}

	return tasks
}

func (c *Channel) readFile(path string, label string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("read "+label+" file, ignoring", zap.String("path", path), zap.Error(err))
		}
		return nil, false
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false
	}

	return data, true
}
