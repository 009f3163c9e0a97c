package fleetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/usecase/fleet"
	"github.com/frontandrew/fleet/internal/usecase/maintenance"
	"github.com/frontandrew/fleet/internal/usecase/protocol"
	"github.com/frontandrew/fleet/internal/usecase/rental"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const apiPrefix = "/api/v1"

// pageSize - максимальный размер страницы, который отдает сервер
const pageSize = 200

// Client - типизированный клиент REST API автопарка
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
	logger     logger.Logger
}

// Option настраивает клиент
type Option func(*Client)

// WithToken задает access token для заголовка Authorization
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient заменяет HTTP клиент
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries задает число попыток для GET запросов и паузу между ними
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// WithLogger задает logger для повторных попыток
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient создает клиент API. Запросы несут контекст трассировки
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			}),
		},
		attempts: 3,
		backoff:  500 * time.Millisecond,
		logger:   logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope - общий формат ответов API
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Total   int    `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

// request описывает один вызов API. body пересоздается на каждую попытку
type request struct {
	method      string
	path        string
	query       url.Values
	body        func() (io.Reader, error)
	contentType string
}

func jsonBody(v interface{}) func() (io.Reader, error) {
	return func() (io.Reader, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// call выполняет запрос и разбирает envelope. GET повторяется при сетевых
// ошибках и 5xx; запросы на запись выполняются один раз
func call[T any](ctx context.Context, c *Client, req request) Result[T] {
	attempts := 1
	if req.method == http.MethodGet {
		attempts = c.attempts
	}

	var res Result[T]
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying fleet api request", map[string]interface{}{
				"path":    req.path,
				"attempt": attempt + 1,
				"kind":    res.Kind.String(),
			})
			// Задержка растет линейно с номером попытки
			select {
			case <-ctx.Done():
				return failed[T](KindNetworkError, 0, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		res = doRequest[T](ctx, c, req)
		if !isRetryable(res.Kind) || ctx.Err() != nil {
			break
		}
	}
	return res
}

func doRequest[T any](ctx context.Context, c *Client, req request) Result[T] {
	target := c.baseURL + apiPrefix + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		var err error
		if body, err = req.body(); err != nil {
			return failed[T](KindClientError, 0, err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return failed[T](KindClientError, 0, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		contentType := req.contentType
		if contentType == "" {
			contentType = "application/json"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failed[T](KindNetworkError, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed[T](KindNetworkError, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	kind := kindForStatus(resp.StatusCode)
	if kind != KindOK {
		return failed[T](kind, resp.StatusCode, &APIError{Status: resp.StatusCode, Message: errorMessage(data)})
	}

	var env envelope[T]
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return ok(env.Data, resp.StatusCode)
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return failed[T](KindServerError, resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	res := ok(env.Data, resp.StatusCode)
	res.Total = env.Total
	return res
}

// errorMessage достает текст ошибки из envelope, иначе возвращает тело как есть
func errorMessage(data []byte) string {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(data, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return strings.TrimSpace(string(data))
}

// isRetryable определяет, имеет ли смысл повторять запрос
func isRetryable(kind Kind) bool {
	return kind == KindNetworkError || kind == KindServerError
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) Result[T] {
	return call[T](ctx, c, request{method: http.MethodGet, path: path, query: query})
}

// getAll постранично загружает весь список. Страница не больше pageSize,
// как и на сервере; загрузка идет, пока не получено total записей
func getAll[T any](ctx context.Context, c *Client, path string, query url.Values) Result[[]T] {
	all := []T{}
	status := http.StatusOK
	for offset := 0; ; {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(offset))

		page := get[[]T](ctx, c, path, q)
		if !page.OK() {
			return page
		}
		status = page.Status
		all = append(all, page.Value...)
		offset += len(page.Value)
		if len(page.Value) == 0 || offset >= page.Total {
			break
		}
	}

	res := ok(all, status)
	res.Total = len(all)
	return res
}

func send[T any](ctx context.Context, c *Client, method, path string, payload interface{}) Result[T] {
	req := request{method: method, path: path}
	if payload != nil {
		req.body = jsonBody(payload)
	}
	return call[T](ctx, c, req)
}

// Empty - результат операций без тела ответа
type Empty struct{}

// VehicleQuery - фильтр списка автомобилей
type VehicleQuery struct {
	Status          domain.VehicleStatus
	Category        domain.VehicleCategory
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

func (q VehicleQuery) values() url.Values {
	v := url.Values{}
	setString(v, "status", string(q.Status))
	setString(v, "category", string(q.Category))
	setString(v, "search", q.Search)
	if q.IncludeInactive {
		v.Set("include_inactive", "true")
	}
	setPage(v, q.Limit, q.Offset)
	return v
}

// RentalQuery - фильтр списка аренд. Границы дат полуоткрытые
type RentalQuery struct {
	VehicleID     *uuid.UUID
	Status        domain.RentalStatus
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	EndDateFrom   *time.Time
	EndDateTo     *time.Time
	Limit         int
	Offset        int
}

func (q RentalQuery) values() url.Values {
	v := url.Values{}
	if q.VehicleID != nil {
		v.Set("vehicle_id", q.VehicleID.String())
	}
	setString(v, "status", string(q.Status))
	setTime(v, "start_date_from", q.StartDateFrom)
	setTime(v, "start_date_to", q.StartDateTo)
	setTime(v, "end_date_from", q.EndDateFrom)
	setTime(v, "end_date_to", q.EndDateTo)
	setPage(v, q.Limit, q.Offset)
	return v
}

// ProtocolQuery - фильтр списка протоколов
type ProtocolQuery struct {
	Status   domain.ProtocolStatus
	OpenOnly bool
	Search   string
	Limit    int
	Offset   int
}

func (q ProtocolQuery) values() url.Values {
	v := url.Values{}
	setString(v, "status", string(q.Status))
	setString(v, "search", q.Search)
	if q.OpenOnly {
		v.Set("open", "true")
	}
	setPage(v, q.Limit, q.Offset)
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setTime(v url.Values, key string, t *time.Time) {
	if t != nil {
		v.Set(key, t.UTC().Format(time.RFC3339))
	}
}

func setPage(v url.Values, limit, offset int) {
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		v.Set("offset", strconv.Itoa(offset))
	}
}

func rangeValues(dr domain.DateRange) url.Values {
	v := url.Values{}
	v.Set("from", dr.From.UTC().Format(time.RFC3339))
	v.Set("to", dr.To.UTC().Format(time.RFC3339))
	return v
}

func idPath(format string, id uuid.UUID) string {
	return fmt.Sprintf(format, id.String())
}

// Автомобили

func (c *Client) ListVehicles(ctx context.Context, q VehicleQuery) Result[[]*domain.FleetVehicle] {
	return get[[]*domain.FleetVehicle](ctx, c, "/fleet/vehicles", q.values())
}

func (c *Client) GetVehicle(ctx context.Context, id uuid.UUID) Result[*domain.FleetVehicle] {
	return get[*domain.FleetVehicle](ctx, c, idPath("/fleet/vehicles/%s", id), nil)
}

func (c *Client) CreateVehicle(ctx context.Context, in *fleet.VehicleInput) Result[*domain.FleetVehicle] {
	return send[*domain.FleetVehicle](ctx, c, http.MethodPost, "/fleet/vehicles", in)
}

func (c *Client) UpdateVehicle(ctx context.Context, id uuid.UUID, req *fleet.UpdateVehicleRequest) Result[*domain.FleetVehicle] {
	return send[*domain.FleetVehicle](ctx, c, http.MethodPut, idPath("/fleet/vehicles/%s", id), req)
}

func (c *Client) UpdateVehicleStatus(ctx context.Context, id uuid.UUID, req *fleet.UpdateStatusRequest) Result[*domain.FleetVehicle] {
	return send[*domain.FleetVehicle](ctx, c, http.MethodPatch, idPath("/fleet/vehicles/%s/status", id), req)
}

func (c *Client) DeleteVehicle(ctx context.Context, id uuid.UUID) Result[Empty] {
	return send[Empty](ctx, c, http.MethodDelete, idPath("/fleet/vehicles/%s", id), nil)
}

func (c *Client) UpcomingService(ctx context.Context) Result[[]*domain.FleetVehicle] {
	return get[[]*domain.FleetVehicle](ctx, c, "/fleet/vehicles/upcoming-service", nil)
}

func (c *Client) Dictionaries(ctx context.Context) Result[domain.Dictionaries] {
	return get[domain.Dictionaries](ctx, c, "/fleet/dictionaries", nil)
}

// Availability возвращает свободные автомобили по расчету сервера
func (c *Client) Availability(ctx context.Context, dr domain.DateRange, category domain.VehicleCategory) Result[[]*domain.FleetVehicle] {
	v := rangeValues(dr)
	setString(v, "category", string(category))
	return get[[]*domain.FleetVehicle](ctx, c, "/fleet/availability", v)
}

// ListAllVehicles загружает все страницы списка автомобилей; Limit и Offset игнорируются
func (c *Client) ListAllVehicles(ctx context.Context, q VehicleQuery) Result[[]*domain.FleetVehicle] {
	q.Limit, q.Offset = 0, 0
	return getAll[*domain.FleetVehicle](ctx, c, "/fleet/vehicles", q.values())
}

// CheckAvailability считает свободные автомобили на стороне клиента: загружает
// все автомобили и все пересекающиеся с диапазоном аренды. Если один из
// запросов не удался, возвращается его результат
func (c *Client) CheckAvailability(ctx context.Context, dr domain.DateRange) Result[[]*domain.FleetVehicle] {
	if err := dr.Validate(); err != nil {
		return failed[[]*domain.FleetVehicle](KindClientError, 0, err)
	}

	vehicles := c.ListAllVehicles(ctx, VehicleQuery{})
	if !vehicles.OK() {
		return vehicles
	}

	rentals := c.ListAllRentals(ctx, RentalQuery{StartDateTo: &dr.To, EndDateFrom: &dr.From})
	if !rentals.OK() {
		return failed[[]*domain.FleetVehicle](rentals.Kind, rentals.Status, rentals.Err)
	}

	return ok(domain.AvailableVehicles(vehicles.Value, rentals.Value, dr), http.StatusOK)
}

// Аренды

func (c *Client) ListRentals(ctx context.Context, q RentalQuery) Result[[]*domain.FleetRental] {
	return get[[]*domain.FleetRental](ctx, c, "/fleet/rentals", q.values())
}

// ListAllRentals загружает все страницы списка аренд; Limit и Offset игнорируются
func (c *Client) ListAllRentals(ctx context.Context, q RentalQuery) Result[[]*domain.FleetRental] {
	q.Limit, q.Offset = 0, 0
	return getAll[*domain.FleetRental](ctx, c, "/fleet/rentals", q.values())
}

func (c *Client) GetRental(ctx context.Context, id uuid.UUID) Result[*domain.FleetRental] {
	return get[*domain.FleetRental](ctx, c, idPath("/fleet/rentals/%s", id), nil)
}

func (c *Client) CreateRental(ctx context.Context, in *rental.RentalInput) Result[*domain.FleetRental] {
	return send[*domain.FleetRental](ctx, c, http.MethodPost, "/fleet/rentals", in)
}

func (c *Client) UpdateRental(ctx context.Context, id uuid.UUID, req *rental.UpdateRentalRequest) Result[*domain.FleetRental] {
	return send[*domain.FleetRental](ctx, c, http.MethodPut, idPath("/fleet/rentals/%s", id), req)
}

func (c *Client) StartRental(ctx context.Context, id uuid.UUID, req *rental.StartRequest) Result[*domain.FleetRental] {
	return send[*domain.FleetRental](ctx, c, http.MethodPost, idPath("/fleet/rentals/%s/start", id), req)
}

func (c *Client) CompleteRental(ctx context.Context, id uuid.UUID, req *rental.CompleteRequest) Result[*domain.FleetRental] {
	return send[*domain.FleetRental](ctx, c, http.MethodPost, idPath("/fleet/rentals/%s/complete", id), req)
}

func (c *Client) CancelRental(ctx context.Context, id uuid.UUID, req *rental.CancelRequest) Result[*domain.FleetRental] {
	return send[*domain.FleetRental](ctx, c, http.MethodPost, idPath("/fleet/rentals/%s/cancel", id), req)
}

func (c *Client) DeleteRental(ctx context.Context, id uuid.UUID) Result[Empty] {
	return send[Empty](ctx, c, http.MethodDelete, idPath("/fleet/rentals/%s", id), nil)
}

// Обслуживание и заправки

func (c *Client) ListVehicleMaintenance(ctx context.Context, vehicleID uuid.UUID) Result[[]*domain.FleetMaintenance] {
	return get[[]*domain.FleetMaintenance](ctx, c, idPath("/fleet/vehicles/%s/maintenance", vehicleID), nil)
}

func (c *Client) CreateMaintenance(ctx context.Context, req *maintenance.CreateMaintenanceRequest) Result[*domain.FleetMaintenance] {
	return send[*domain.FleetMaintenance](ctx, c, http.MethodPost, "/fleet/maintenance", req)
}

func (c *Client) DeleteMaintenance(ctx context.Context, id uuid.UUID) Result[Empty] {
	return send[Empty](ctx, c, http.MethodDelete, idPath("/fleet/maintenance/%s", id), nil)
}

func (c *Client) ListVehicleFuel(ctx context.Context, vehicleID uuid.UUID) Result[[]*domain.FleetFuelEntry] {
	return get[[]*domain.FleetFuelEntry](ctx, c, idPath("/fleet/vehicles/%s/fuel", vehicleID), nil)
}

func (c *Client) FuelStats(ctx context.Context, vehicleID uuid.UUID) Result[*domain.FuelStats] {
	return get[*domain.FuelStats](ctx, c, idPath("/fleet/vehicles/%s/fuel/stats", vehicleID), nil)
}

func (c *Client) CreateFuel(ctx context.Context, req *maintenance.CreateFuelRequest) Result[*domain.FleetFuelEntry] {
	return send[*domain.FleetFuelEntry](ctx, c, http.MethodPost, "/fleet/fuel", req)
}

// Фотографии

// UploadImage отправляет файл multipart формой. Файл читается целиком в память,
// поэтому запрос не повторяется
func (c *Client) UploadImage(ctx context.Context, entityType domain.ImageEntityType, entityID uuid.UUID, fileName string, content io.Reader) Result[*domain.FleetImage] {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("entity_type", string(entityType))
	_ = form.WriteField("entity_id", entityID.String())
	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return failed[*domain.FleetImage](KindClientError, 0, fmt.Errorf("failed to create form file: %w", err))
	}
	if _, err := io.Copy(part, content); err != nil {
		return failed[*domain.FleetImage](KindClientError, 0, fmt.Errorf("failed to read image: %w", err))
	}
	if err := form.Close(); err != nil {
		return failed[*domain.FleetImage](KindClientError, 0, fmt.Errorf("failed to close form: %w", err))
	}

	data := buf.Bytes()
	return call[*domain.FleetImage](ctx, c, request{
		method:      http.MethodPost,
		path:        "/fleet/images",
		body:        func() (io.Reader, error) { return bytes.NewReader(data), nil },
		contentType: form.FormDataContentType(),
	})
}

func (c *Client) ListImages(ctx context.Context, entityType domain.ImageEntityType, entityID uuid.UUID) Result[[]*domain.FleetImage] {
	v := url.Values{}
	v.Set("entity_type", string(entityType))
	v.Set("entity_id", entityID.String())
	return get[[]*domain.FleetImage](ctx, c, "/fleet/images", v)
}

func (c *Client) DeleteImage(ctx context.Context, id uuid.UUID) Result[Empty] {
	return send[Empty](ctx, c, http.MethodDelete, idPath("/fleet/images/%s", id), nil)
}

// Протоколы приемки

func (c *Client) ListProtocols(ctx context.Context, q ProtocolQuery) Result[[]*protocol.Details] {
	return get[[]*protocol.Details](ctx, c, "/protocols", q.values())
}

func (c *Client) GetProtocol(ctx context.Context, id uuid.UUID) Result[*protocol.Details] {
	return get[*protocol.Details](ctx, c, idPath("/protocols/%s", id), nil)
}

func (c *Client) CreateProtocol(ctx context.Context, in *protocol.ProtocolInput) Result[*protocol.Details] {
	return send[*protocol.Details](ctx, c, http.MethodPost, "/protocols", in)
}

func (c *Client) UpdateProtocolStatus(ctx context.Context, id uuid.UUID, status domain.ProtocolStatus) Result[*protocol.Details] {
	return send[*protocol.Details](ctx, c, http.MethodPatch, idPath("/protocols/%s/status", id),
		map[string]domain.ProtocolStatus{"status": status})
}

func (c *Client) AddComment(ctx context.Context, id uuid.UUID, text string) Result[*domain.ProtocolComment] {
	return send[*domain.ProtocolComment](ctx, c, http.MethodPost, idPath("/protocols/%s/comments", id),
		&protocol.CommentRequest{Text: text})
}

// Финансовые отчеты

func (c *Client) Dashboard(ctx context.Context) Result[*domain.Dashboard] {
	return get[*domain.Dashboard](ctx, c, "/financial-reports/dashboard", nil)
}

func (c *Client) Summary(ctx context.Context, dr domain.DateRange) Result[*domain.FinancialSummary] {
	return get[*domain.FinancialSummary](ctx, c, "/financial-reports/summary", rangeValues(dr))
}

func (c *Client) Comparison(ctx context.Context, period domain.ReportPeriod) Result[*domain.PeriodComparison] {
	v := url.Values{}
	setString(v, "period", string(period))
	return get[*domain.PeriodComparison](ctx, c, "/financial-reports/comparison", v)
}

func (c *Client) BreakEven(ctx context.Context, dr domain.DateRange) Result[*domain.BreakEvenAnalysis] {
	return get[*domain.BreakEvenAnalysis](ctx, c, "/financial-reports/break-even", rangeValues(dr))
}

// Health проверяет доступность API
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
