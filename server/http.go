// Package server exposes segmentation over HTTP with fiber.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/oarkflow/xid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oarkflow/wordsplit/config"
	"github.com/oarkflow/wordsplit/metrics"
	"github.com/oarkflow/wordsplit/segment"
	"github.com/oarkflow/wordsplit/watch"
)

const (
	mimeJSON    = fiber.MIMEApplicationJSON
	mimeMsgpack = "application/msgpack"
)

type SplitRequest struct {
	Text string `json:"text" msgpack:"text"`
}

type SplitResponse struct {
	Text  string   `json:"text" msgpack:"text"`
	Words []string `json:"words" msgpack:"words"`
}

type BatchRequest struct {
	Texts []string `json:"texts" msgpack:"texts"`
}

type BatchResponse struct {
	Results []string `json:"results" msgpack:"results"`
}

type ModelResponse struct {
	Source        string    `json:"source" msgpack:"source"`
	Words         int       `json:"words" msgpack:"words"`
	MaxWordLength int       `json:"max_word_length" msgpack:"max_word_length"`
	LoadedAt      time.Time `json:"loaded_at" msgpack:"loaded_at"`
}

type errorResponse struct {
	Error string `json:"error" msgpack:"error"`
}

// Options wires a Server. Holder is required; the rest default.
type Options struct {
	Config   config.Server
	Workers  int
	Holder   *watch.Holder
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

type Server struct {
	app  *fiber.App
	opts Options
}

// New builds the fiber app and its routes.
func New(opts Options) (*Server, error) {
	if opts.Holder == nil {
		return nil, errors.New("server: nil model holder")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		m, err := metrics.New(nil)
		if err != nil {
			return nil, err
		}
		opts.Metrics = m
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{opts: opts}
	s.app = fiber.New(fiber.Config{
		AppName:               opts.Config.Name,
		BodyLimit:             opts.Config.BodyLimit,
		ReadTimeout:           opts.Config.ReadTimeout,
		WriteTimeout:          opts.Config.WriteTimeout,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{
		Generator: func() string { return xid.New().String() },
	}))
	s.app.Use(s.accessLog)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	v1 := s.app.Group("/v1")
	v1.Post("/split", s.split)
	v1.Post("/split/batch", s.splitBatch)
	v1.Get("/model", s.model)
	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Run listens on addr until ctx is done, then drains connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", slog.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.opts.Logger.Info("shutting down")
	if err := s.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) split(c *fiber.Ctx) error {
	var req SplitRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if err := s.checkText(req.Text); err != nil {
		return err
	}
	start := time.Now()
	words := s.opts.Holder.Load().Segmenter.Words(req.Text)
	s.opts.Metrics.ObserveSegment("split", start)
	if words == nil {
		words = []string{}
	}
	return respond(c, fiber.StatusOK, SplitResponse{Text: strings.Join(words, " "), Words: words})
}

func (s *Server) splitBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if limit := s.opts.Config.MaxBatch; limit > 0 && len(req.Texts) > limit {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "too many texts")
	}
	for _, t := range req.Texts {
		if err := s.checkText(t); err != nil {
			return err
		}
	}
	start := time.Now()
	seg := s.opts.Holder.Load().Segmenter
	out, err := segment.SplitBatch(c.UserContext(), seg, req.Texts, s.opts.Workers)
	if err != nil {
		return err
	}
	s.opts.Metrics.ObserveBatch(len(req.Texts), start)
	return respond(c, fiber.StatusOK, BatchResponse{Results: out})
}

func (s *Server) model(c *fiber.Ctx) error {
	snap := s.opts.Holder.Load()
	return respond(c, fiber.StatusOK, ModelResponse{
		Source:        snap.Source,
		Words:         snap.Model.Len(),
		MaxWordLength: snap.Model.MaxWordLength(),
		LoadedAt:      snap.LoadedAt,
	})
}

func (s *Server) checkText(text string) error {
	if !utf8.ValidString(text) {
		return fiber.NewError(fiber.StatusBadRequest, "text is not valid UTF-8")
	}
	if limit := s.opts.Config.MaxTextRunes; limit > 0 && utf8.RuneCountInString(text) > limit {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "text too long")
	}
	return nil
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	rid, _ := c.Locals("requestid").(string)
	s.opts.Logger.Info("request",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", rid),
	)
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		s.opts.Logger.Error("request failed", slog.String("path", c.Path()), slog.String("err", err.Error()))
	}
	return respond(c, code, errorResponse{Error: msg})
}

func decode(c *fiber.Ctx, v any) error {
	var err error
	if strings.HasPrefix(string(c.Request().Header.ContentType()), mimeMsgpack) {
		err = msgpack.Unmarshal(c.Body(), v)
	} else {
		err = json.Unmarshal(c.Body(), v)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func respond(c *fiber.Ctx, status int, v any) error {
	if c.Accepts(mimeJSON, mimeMsgpack) == mimeMsgpack {
		b, err := msgpack.Marshal(v)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, mimeMsgpack)
		return c.Status(status).Send(b)
	}
	return c.Status(status).JSON(v)
}
