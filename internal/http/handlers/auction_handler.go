package handlers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"cardauction/internal/domain"
	applog "cardauction/internal/log"
	"cardauction/internal/services"
	"cardauction/internal/validate"
)

type AuctionHandler struct {
	Auctions *services.AuctionService
}

type createAuctionReq struct {
	ItemID int    `json:"itemId"`
	Status string `json:"status"`
}

type updateAuctionReq struct {
	Status      string `json:"status"`
	CollectorID *int   `json:"collectorId"`
	Lang        string `json:"lang"`
}

type matchResp struct {
	Auction           domain.Auction `json:"auction"`
	MatchedAttributes []string       `json:"matchedAttributes"`
	TotalValue        int            `json:"totalValue"`
}

func (h *AuctionHandler) List(c *fiber.Ctx) error {
	list, err := h.Auctions.ListAuctions(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

func (h *AuctionHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.AuctionID(c.Params("id"))
	if !ok {
		return fail(c, domain.ErrNotFound)
	}
	a, err := h.Auctions.GetAuction(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(a)
}

// Create serves POST /auctions. The new auction replaces the active one,
// unless status "pending" asks for it to be queued.
func (h *AuctionHandler) Create(c *fiber.Ctx) error {
	var req createAuctionReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	var (
		a   domain.Auction
		err error
	)
	switch req.Status {
	case "", string(domain.StatusActive):
		a, err = h.Auctions.StartAuction(c.UserContext(), req.ItemID)
	case string(domain.StatusPending):
		a, err = h.Auctions.QueueAuction(c.UserContext(), req.ItemID)
	default:
		return badRequest(c, "status", "status must be active or pending")
	}
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "auction.create", map[string]any{"auction_id": a.ID, "item_id": a.ItemID, "status": a.Status})
	return c.Status(fiber.StatusCreated).JSON(a)
}

// Active serves GET /auctions/active: the active auction or null.
func (h *AuctionHandler) Active(c *fiber.Ctx) error {
	a, err := h.Auctions.GetActive(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(a)
}

// Next serves POST /auctions/next.
func (h *AuctionHandler) Next(c *fiber.Ctx) error {
	a, err := h.Auctions.NextItem(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "auction.next", map[string]any{"auction_id": a.ID, "item_id": a.ItemID})
	return c.Status(fiber.StatusCreated).JSON(a)
}

// Match serves POST /auctions/match/:itemId/:collectorId?lang=.
func (h *AuctionHandler) Match(c *fiber.Ctx) error {
	itemID, ok := validate.Int(c.Params("itemId"))
	if !ok {
		return badRequest(c, "itemId", "itemId must be an integer")
	}
	collectorID, ok := validate.Int(c.Params("collectorId"))
	if !ok {
		return badRequest(c, "collectorId", "collectorId must be an integer")
	}
	a, err := h.Auctions.Match(c.UserContext(), itemID, collectorID, domain.ParseLanguage(c.Query("lang")))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "auction.match", map[string]any{"auction_id": a.ID, "item_id": itemID, "collector_id": collectorID, "total_value": a.TotalValue})
	return c.JSON(matchResp{Auction: a, MatchedAttributes: a.MatchedAttributes, TotalValue: a.TotalValue})
}

// Update serves PUT /auctions/:id. A collectorId selects the collector; a
// status moves the auction. Both may be sent, the selection applies first.
func (h *AuctionHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.AuctionID(c.Params("id"))
	if !ok {
		return fail(c, domain.ErrNotFound)
	}
	var req updateAuctionReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	if req.Status == "" && req.CollectorID == nil {
		return badRequest(c, "body", "status or collectorId required")
	}
	var status domain.AuctionStatus
	if req.Status != "" {
		if status, ok = domain.ParseStatus(req.Status); !ok {
			return fail(c, fmt.Errorf("unknown status %q: %w", req.Status, domain.ErrValidation))
		}
	}

	ctx := c.UserContext()
	var (
		a   domain.Auction
		err error
	)
	if req.CollectorID != nil {
		if a, err = h.Auctions.SelectCollector(ctx, id, *req.CollectorID, domain.ParseLanguage(req.Lang)); err != nil {
			return fail(c, err)
		}
	}
	if status != "" {
		if a, err = h.Auctions.UpdateStatus(ctx, id, status); err != nil {
			return fail(c, err)
		}
	}
	applog.Audit(c, "auction.update", map[string]any{"auction_id": id, "status": a.Status})
	return c.JSON(a)
}

// Sync serves PUT /auctions/active/sync. The body is the client mirror's
// active auction, or null; the reconciled winner is returned.
func (h *AuctionHandler) Sync(c *fiber.Ctx) error {
	var client *domain.Auction
	if body := bytes.TrimSpace(c.Body()); len(body) > 0 {
		if err := c.BodyParser(&client); err != nil {
			return badRequest(c, "body", "invalid request body")
		}
	}
	if client != nil {
		if _, ok := validate.AuctionID(client.ID); !ok {
			return badRequest(c, "id", "invalid auction id")
		}
	}
	a, err := h.Auctions.SyncActive(c.UserContext(), client)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(a)
}
