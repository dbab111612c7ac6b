package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	"github.com/interiora/interiorabackend/models"
)

// ErrInvalidRole is returned for a role outside designer/client/vendor/admin.
var ErrInvalidRole = fmt.Errorf("invalid role")

// RoleView is the per-request dashboard aggregate for one user. Fields are
// populated per role; untouched ones stay as empty slices.
type RoleView struct {
	Credentials   []bson.M `json:"credentials"`
	Projects      []bson.M `json:"projects"`
	Clients       []bson.M `json:"clients"`
	Vendors       []bson.M `json:"vendors"`
	Conversations []bson.M `json:"conversations"`
	Schedules     []bson.M `json:"schedules"`
	Designers     []bson.M `json:"designers"`
	Orders        []bson.M `json:"orders"`
	Products      []bson.M `json:"products"`
}

func newRoleView() *RoleView {
	return &RoleView{
		Credentials:   []bson.M{},
		Projects:      []bson.M{},
		Clients:       []bson.M{},
		Vendors:       []bson.M{},
		Conversations: []bson.M{},
		Schedules:     []bson.M{},
		Designers:     []bson.M{},
		Orders:        []bson.M{},
		Products:      []bson.M{},
	}
}

// AggregationService computes role-scoped dashboard views. Mongo does the
// reads; every filter and join below runs in memory because the store does
// no server-side joins and foreign keys are plain string fields with no
// existence guarantee. A dangling reference is skipped, never an error.
type AggregationService struct {
	open models.Opener
}

func NewAggregationService(open models.Opener) *AggregationService {
	return &AggregationService{open: open}
}

// GetUserData fans out the collection reads a role needs, waits for all of
// them, then filters and joins. A fault in any single read fails the whole
// call; no partial views.
func (s *AggregationService) GetUserData(ctx context.Context, userID, role string) (*RoleView, error) {
	switch role {
	case "designer":
		return s.designerView(ctx, userID)
	case "client":
		return s.clientView(ctx, userID)
	case "vendor":
		return s.vendorView(ctx, userID)
	case "admin":
		return s.adminView(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
}

func (s *AggregationService) fetchAll(ctx context.Context, name string, dst *[]bson.M) func() error {
	return func() error {
		docs, err := models.NewBaseModel(name, s.open).FindAll(ctx, nil)
		if err != nil {
			return err
		}
		*dst = docs
		return nil
	}
}

func (s *AggregationService) designerView(ctx context.Context, userID string) (*RoleView, error) {
	var projects, clients, vendors, designers, conversations, schedules, orders []bson.M

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.fetchAll(gctx, "projects", &projects))
	g.Go(s.fetchAll(gctx, "clients", &clients))
	g.Go(s.fetchAll(gctx, "vendors", &vendors))
	g.Go(s.fetchAll(gctx, "designers", &designers))
	g.Go(s.fetchAll(gctx, "conversations", &conversations))
	g.Go(s.fetchAll(gctx, "schedules", &schedules))
	g.Go(s.fetchAll(gctx, "orders", &orders))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := newRoleView()
	view.Projects = filterByField(projects, "designer_id", userID)

	// Clients are the distinct ones this designer's projects reference.
	clientIDs := make(map[string]struct{})
	for _, p := range view.Projects {
		if cid := fieldString(p, "client_id"); cid != "" {
			clientIDs[cid] = struct{}{}
		}
	}
	for _, c := range clients {
		if _, ok := clientIDs[fieldString(c, "id")]; ok {
			view.Clients = append(view.Clients, c)
		}
	}

	if me := findByID(designers, userID); me != nil {
		connections := fieldStrings(me, "vendor_connections")
		for _, v := range vendors {
			if containsString(connections, fieldString(v, "id")) {
				view.Vendors = append(view.Vendors, v)
			}
		}
	}

	view.Conversations = filterByParticipant(conversations, userID)
	view.Orders = filterByField(orders, "designer_id", userID)
	view.Schedules = filterByField(schedules, "designer_id", userID)
	return view, nil
}

func (s *AggregationService) clientView(ctx context.Context, userID string) (*RoleView, error) {
	var projects, conversations, schedules, designers []bson.M

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.fetchAll(gctx, "projects", &projects))
	g.Go(s.fetchAll(gctx, "conversations", &conversations))
	g.Go(s.fetchAll(gctx, "schedules", &schedules))
	g.Go(s.fetchAll(gctx, "designers", &designers))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := newRoleView()
	view.Projects = filterByField(projects, "client_id", userID)
	view.Conversations = filterByParticipant(conversations, userID)
	view.Schedules = filterByField(schedules, "client_id", userID)

	seen := make(map[string]struct{})
	for _, p := range view.Projects {
		did := fieldString(p, "designer_id")
		if did == "" {
			continue
		}
		if _, ok := seen[did]; ok {
			continue
		}
		seen[did] = struct{}{}
		if d := findByID(designers, did); d != nil {
			view.Designers = append(view.Designers, d)
		}
	}
	return view, nil
}

func (s *AggregationService) vendorView(ctx context.Context, userID string) (*RoleView, error) {
	var conversations, products, schedules, designers []bson.M

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.fetchAll(gctx, "conversations", &conversations))
	g.Go(s.fetchAll(gctx, "products", &products))
	g.Go(s.fetchAll(gctx, "schedules", &schedules))
	g.Go(s.fetchAll(gctx, "designers", &designers))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := newRoleView()
	view.Conversations = filterByParticipant(conversations, userID)
	view.Products = filterByField(products, "vendor_id", userID)
	view.Schedules = filterByField(schedules, "vendor_id", userID)

	// Inverse of the designer-side vendor_connections relationship.
	for _, d := range designers {
		if containsString(fieldStrings(d, "vendor_connections"), userID) {
			view.Designers = append(view.Designers, d)
		}
	}
	return view, nil
}

func (s *AggregationService) adminView(ctx context.Context) (*RoleView, error) {
	view := newRoleView()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.fetchAll(gctx, "credentials", &view.Credentials))
	g.Go(s.fetchAll(gctx, "designers", &view.Designers))
	g.Go(s.fetchAll(gctx, "clients", &view.Clients))
	g.Go(s.fetchAll(gctx, "vendors", &view.Vendors))
	g.Go(s.fetchAll(gctx, "schedules", &view.Schedules))
	g.Go(s.fetchAll(gctx, "projects", &view.Projects))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func fieldString(doc bson.M, key string) string {
	s, _ := doc[key].(string)
	return s
}

// fieldStrings reads a string-array field, tolerating both decoded bson.A
// values and plain []string fixtures.
func fieldStrings(doc bson.M, key string) []string {
	switch v := doc[key].(type) {
	case []string:
		return v
	case bson.A:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func containsString(list []string, want string) bool {
	if want == "" {
		return false
	}
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func filterByField(docs []bson.M, key, want string) []bson.M {
	out := make([]bson.M, 0)
	for _, d := range docs {
		if fieldString(d, key) == want {
			out = append(out, d)
		}
	}
	return out
}

func filterByParticipant(docs []bson.M, userID string) []bson.M {
	out := make([]bson.M, 0)
	for _, d := range docs {
		if containsString(fieldStrings(d, "participants"), userID) {
			out = append(out, d)
		}
	}
	return out
}

func findByID(docs []bson.M, id string) bson.M {
	for _, d := range docs {
		if fieldString(d, "id") == id {
			return d
		}
	}
	return nil
}
