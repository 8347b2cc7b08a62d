package app

import (
	"errors"

	"book_exchange_service/internal/api/comm"
	"book_exchange_service/internal/book/domain"
	"book_exchange_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// BookHTTPHandler REST surface of the book service
type BookHTTPHandler struct {
	books         *BookUseCase
	geo           *GeosearchUseCase
	requests      *RequestUseCase
	notifications *NotificationUseCase
	metadata      *MetadataUseCase
}

// NewBookHTTPHandler create BookHTTPHandler
func NewBookHTTPHandler(
	books *BookUseCase,
	geo *GeosearchUseCase,
	requests *RequestUseCase,
	notifications *NotificationUseCase,
	metadata *MetadataUseCase,
) *BookHTTPHandler {
	return &BookHTTPHandler{
		books:         books,
		geo:           geo,
		requests:      requests,
		notifications: notifications,
		metadata:      metadata,
	}
}

func bookStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrCannotRequestOwnBook),
		errors.Is(err, domain.ErrQueryTooShort),
		errors.Is(err, domain.ErrInvalidRadius),
		errors.Is(err, domain.ErrInvalidPoint),
		errors.Is(err, domain.ErrEmptyMetadataQuery):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrBookNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrPlaceNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyRequested),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrBookUnavailable):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrGeocodeTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, domain.ErrProviderNotReady):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fail 只回傳對外的錯誤訊息
func fail(c *fiber.Ctx, err error) error {
	return comm.Fail(c, err, bookStatus)
}

type pointQuery struct {
	Lat *float64 `query:"lat" validate:"omitempty,latitude"`
	Lng *float64 `query:"lng" validate:"omitempty,longitude"`
}

func (q pointQuery) point() *domain.GeoPoint {
	if q.Lat == nil || q.Lng == nil {
		return nil
	}
	return &domain.GeoPoint{Lat: *q.Lat, Lng: *q.Lng}
}

// Suggest 地址自動完成
// @Summary Address autocomplete
// @Description Predictions biased around lat/lng, or the configured fallback point
// @Tags Geocode
// @Produce json
// @Param q query string true "partial address, at least 2 characters"
// @Param lat query number false "bias latitude"
// @Param lng query number false "bias longitude"
// @Success 200 {object} comm.Response
// @Failure 400 {object} comm.Response
// @Failure 504 {object} comm.Response
// @Router /geocode/suggest [get]
func (h *BookHTTPHandler) Suggest(c *fiber.Ctx) error {
	var q pointQuery
	if err := comm.BindQuery(c, &q); err != nil {
		return comm.Fail(c, err, nil)
	}
	res, err := h.geo.Suggest(c.UserContext(), c.Query("q"), q.point())
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, res)
}

// Place 取得地點座標
// @Summary Resolve a predicted place
// @Tags Geocode
// @Produce json
// @Param id path string true "place id"
// @Success 200 {object} comm.Response
// @Router /geocode/place/{id} [get]
func (h *BookHTTPHandler) Place(c *fiber.Ctx) error {
	res, err := h.geo.Resolve(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, res)
}

// Reverse 座標反查地址
// @Summary Reverse geocode a coordinate
// @Tags Geocode
// @Produce json
// @Param lat query number true "latitude"
// @Param lng query number true "longitude"
// @Success 200 {object} comm.Response
// @Router /geocode/reverse [get]
func (h *BookHTTPHandler) Reverse(c *fiber.Ctx) error {
	var q pointQuery
	if err := comm.BindQuery(c, &q); err != nil {
		return comm.Fail(c, err, nil)
	}
	p := q.point()
	if p == nil {
		return fail(c, domain.ErrInvalidPoint)
	}
	res, err := h.geo.Reverse(c.UserContext(), *p)
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, res)
}

// ProviderStatus 地圖服務狀態
// @Summary Geocoding provider readiness
// @Tags Geocode
// @Produce json
// @Success 200 {object} comm.Response
// @Router /geocode/status [get]
func (h *BookHTTPHandler) ProviderStatus(c *fiber.Ctx) error {
	return comm.OK(c, h.geo.Loader().Status())
}

// ReloadProvider 重新載入地圖服務
// @Summary Reload the geocoding provider
// @Description The only way out of a failed provider load
// @Tags Geocode
// @Produce json
// @Success 200 {object} comm.Response
// @Failure 503 {object} comm.Response
// @Router /geocode/reload [post]
func (h *BookHTTPHandler) ReloadProvider(c *fiber.Ctx) error {
	if err := h.geo.Loader().Reload(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return comm.OK(c, h.geo.Loader().Status())
}

// RadiusSteps 半徑刻度
// @Summary Radius slider scale in km
// @Tags Books
// @Produce json
// @Success 200 {object} comm.Response
// @Router /radius/steps [get]
func (h *BookHTTPHandler) RadiusSteps(c *fiber.Ctx) error {
	return comm.OK(c, fiber.Map{"steps": domain.RadiusSteps, "default_index": DefaultRadiusIndex})
}

// Nearby 附近的書
// @Summary Books near a coordinate
// @Description radius_km snaps to the nearest slider step; rows are re-checked with haversine
// @Tags Books
// @Produce json
// @Param lat query number true "latitude"
// @Param lng query number true "longitude"
// @Param radius_km query number true "radius in km"
// @Param max_results query int false "result cap"
// @Success 200 {object} comm.Response
// @Router /books/nearby [get]
func (h *BookHTTPHandler) Nearby(c *fiber.Ctx) error {
	var q domain.NearbyQuery
	if err := comm.BindQuery(c, &q); err != nil {
		return comm.Fail(c, err, nil)
	}
	res, err := h.geo.Nearby(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, res)
}

// CreateBook 上架書籍
// @Summary List a book
// @Tags Books
// @Accept json
// @Produce json
// @Param book body domain.NewBook true "book"
// @Success 200 {object} comm.Response
// @Router /books [post]
func (h *BookHTTPHandler) CreateBook(c *fiber.Ctx) error {
	var in domain.NewBook
	if err := comm.BindBody(c, &in); err != nil {
		return comm.Fail(c, err, nil)
	}
	book, err := h.books.CreateBook(c.UserContext(), middlewares.MemberID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, book)
}

// MyBooks 我的書籍
// @Summary Books of the viewer
// @Tags Books
// @Produce json
// @Success 200 {object} comm.Response
// @Router /books/mine [get]
func (h *BookHTTPHandler) MyBooks(c *fiber.Ctx) error {
	books, err := h.books.ListMine(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, books)
}

// GetBook 取得書籍
// @Summary One book
// @Tags Books
// @Produce json
// @Param id path string true "book id"
// @Success 200 {object} comm.Response
// @Router /books/{id} [get]
func (h *BookHTTPHandler) GetBook(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := comm.Check(&struct {
		ID string `json:"id" validate:"uuid"`
	}{ID: id}); err != nil {
		return fail(c, domain.ErrBookNotFound)
	}
	book, err := h.books.GetBook(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, book)
}

// SearchMetadata 書目查詢
// @Summary Search the public catalogue
// @Tags Books
// @Produce json
// @Param title query string false "title"
// @Param author query string false "author"
// @Param isbn query string false "isbn"
// @Param limit query int false "result cap"
// @Success 200 {object} comm.Response
// @Router /metadata/search [get]
func (h *BookHTTPHandler) SearchMetadata(c *fiber.Ctx) error {
	var q domain.MetadataQuery
	if err := comm.BindQuery(c, &q); err != nil {
		return comm.Fail(c, err, nil)
	}
	res, err := h.metadata.Search(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, res)
}

// RequestBook 申請借書
// @Summary Request a book from its owner
// @Tags Requests
// @Accept json
// @Produce json
// @Param request body domain.CreateRequestReq true "request"
// @Success 200 {object} comm.Response
// @Failure 400 {object} comm.Response "cannot request own book"
// @Failure 409 {object} comm.Response "book already requested"
// @Router /requests [post]
func (h *BookHTTPHandler) RequestBook(c *fiber.Ctx) error {
	var in domain.CreateRequestReq
	if err := comm.BindBody(c, &in); err != nil {
		return comm.Fail(c, err, nil)
	}
	req, err := h.requests.RequestBook(c.UserContext(), middlewares.MemberID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, req)
}

// IncomingRequests 收到的申請
// @Summary Requests for the viewer's books
// @Tags Requests
// @Produce json
// @Success 200 {object} comm.Response
// @Router /requests/incoming [get]
func (h *BookHTTPHandler) IncomingRequests(c *fiber.Ctx) error {
	reqs, err := h.requests.ListIncoming(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, reqs)
}

// OutgoingRequests 送出的申請
// @Summary Requests made by the viewer
// @Tags Requests
// @Produce json
// @Success 200 {object} comm.Response
// @Router /requests/outgoing [get]
func (h *BookHTTPHandler) OutgoingRequests(c *fiber.Ctx) error {
	reqs, err := h.requests.ListOutgoing(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, reqs)
}

// UpdateRequest 更新申請狀態
// @Summary Accept, decline or cancel a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param status body domain.UpdateRequestReq true "new status"
// @Success 200 {object} comm.Response
// @Router /requests/{id} [patch]
func (h *BookHTTPHandler) UpdateRequest(c *fiber.Ctx) error {
	var in domain.UpdateRequestReq
	if err := comm.BindBody(c, &in); err != nil {
		return comm.Fail(c, err, nil)
	}
	req, err := h.requests.UpdateStatus(c.UserContext(), middlewares.MemberID(c), c.Params("id"), in.Status)
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, req)
}

// Notifications 通知列表
// @Summary Notifications of the viewer
// @Tags Notifications
// @Produce json
// @Param unread query bool false "only unread"
// @Param limit query int false "result cap"
// @Success 200 {object} comm.Response
// @Router /notifications [get]
func (h *BookHTTPHandler) Notifications(c *fiber.Ctx) error {
	memberID := middlewares.MemberID(c)
	list, err := h.notifications.List(c.UserContext(), memberID, c.QueryBool("unread", false), c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, err)
	}
	unread, err := h.notifications.UnreadCount(c.UserContext(), memberID)
	if err != nil {
		return fail(c, err)
	}
	return comm.OK(c, fiber.Map{"notifications": list, "unread": unread})
}

// MarkNotificationRead 通知已讀
// @Summary Mark a notification read
// @Tags Notifications
// @Param id path string true "notification id"
// @Success 200 {object} comm.Response
// @Router /notifications/{id}/read [post]
func (h *BookHTTPHandler) MarkNotificationRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkRead(c.UserContext(), middlewares.MemberID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return comm.OK(c, nil)
}
