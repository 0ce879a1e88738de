package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/setpoint"
)

const (
	pathConfig  = "/config"
	pathCalib   = "/calib"
	pathRestart = "/restart"

	pathMeasurement = "/measurement.csv"
)

type Option func(impl *clientImpl)

func HTTPClientOption(httpClient *http.Client) Option {
	return func(impl *clientImpl) {
		impl.httpClient = httpClient
	}
}

func NewClient(cfg Config, logger l.Wrapper, options ...Option) Client {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	impl := &clientImpl{
		cfg:        cfg,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:     logger.WithFields(l.StringField(l.ClsKey, "clientImpl")),
		httpClient: http.DefaultClient,
	}

	for _, o := range options {
		o(impl)
	}

	if cfg.CacheTTL > 0 {
		impl.cachedDs = cache.New(cfg.CacheTTL, cfg.CacheTTL*2)
	}

	return impl
}

type clientImpl struct {
	cfg        Config
	baseURL    string
	logger     l.Wrapper
	httpClient *http.Client

	cachedDs *cache.Cache
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func (impl *clientImpl) do(ctx context.Context, method, path string, body interface{}) (d []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, impl.cfg.Timeout)
	defer cancel()

	defer func() {
		if err != nil {
			impl.logger.WithFields(l.ErrorField(err), l.StringField("method", method),
				l.StringField("path", path)).Error("request failed")
		}
	}()

	var reader io.Reader

	if body != nil {
		var bd []byte

		bd, err = json.Marshal(body)
		if err != nil {
			return
		}

		reader = bytes.NewReader(bd)
	}

	req, err := http.NewRequestWithContext(ctx, method, impl.baseURL+path, reader)
	if err != nil {
		return
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	}

	resp, err := impl.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			err = fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}

		return
	}

	defer resp.Body.Close()

	d, err = io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			err = fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}

		return
	}

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("%w: %s %s: %d", ErrStatus, method, path, resp.StatusCode)
	}

	return
}

func (impl *clientImpl) cached(key string) ([]byte, bool) {
	if impl.cachedDs == nil {
		return nil, false
	}

	i, ok := impl.cachedDs.Get(key)
	if !ok {
		return nil, false
	}

	d, ok := i.([]byte)

	return d, ok
}

func (impl *clientImpl) get(ctx context.Context, path string, v interface{}) error {
	d, ok := impl.cached(path)
	if !ok {
		var err error

		d, err = impl.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(d, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if impl.cachedDs != nil {
		impl.cachedDs.SetDefault(path, d)
	}

	return nil
}

func (impl *clientImpl) post(ctx context.Context, path string, body interface{}) error {
	if impl.cachedDs != nil {
		impl.cachedDs.Flush()
	}

	_, err := impl.do(ctx, http.MethodPost, path, body)

	return err
}

func (impl *clientImpl) GetConfig(ctx context.Context) (*setpoint.ControllerConfig, error) {
	cfg := &setpoint.ControllerConfig{}

	if err := impl.get(ctx, pathConfig, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (impl *clientImpl) PostConfig(ctx context.Context, cfg *setpoint.ControllerConfig) error {
	return impl.post(ctx, pathConfig, cfg)
}

func (impl *clientImpl) GetCalibrations(ctx context.Context) ([]calibration.Linear, error) {
	var cs []calibration.Linear

	if err := impl.get(ctx, pathCalib, &cs); err != nil {
		return nil, err
	}

	return cs, nil
}

func (impl *clientImpl) PostCalibration(ctx context.Context, req *calibration.Request) error {
	return impl.post(ctx, pathCalib, req)
}

func (impl *clientImpl) Restart(ctx context.Context) error {
	return impl.post(ctx, pathRestart, nil)
}

func (impl *clientImpl) GetMeasurements(ctx context.Context) ([]byte, error) {
	return impl.do(ctx, http.MethodGet, pathMeasurement, nil)
}
