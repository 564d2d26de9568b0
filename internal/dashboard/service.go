package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/malikarslanasif131/hackathon-backend/internal/auth"
	"github.com/malikarslanasif131/hackathon-backend/internal/notify"
	"github.com/malikarslanasif131/hackathon-backend/internal/schema"
	"github.com/malikarslanasif131/hackathon-backend/internal/store"
	"github.com/malikarslanasif131/hackathon-backend/pkg/logger"
	"github.com/malikarslanasif131/hackathon-backend/pkg/metrics"
)

// Result is the uniform operation envelope: an HTTP-style status, a message,
// and the item list for List.
type Result struct {
	Status  int
	Message string
	Items   []map[string]any
}

// Object identifies one target of a bulk status update. Name and Email feed
// the acceptance/rejection notification for person-type resources.
type Object struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Templates holds the SendGrid dynamic-template ids the router sends with.
type Templates struct {
	Confirmation string
	Acceptance   string
	Rejection    string
}

// Service is the resource router: it authorizes each operation against the
// registry's per-verb allow-list, applies the attribute whitelist, and
// translates the operation into document-store calls plus best-effort
// notifications.
type Service struct {
	store  store.Store
	reg    *schema.Registry
	authz  auth.Authorizer
	mailer notify.Mailer
	tpl    Templates
}

func NewService(st store.Store, reg *schema.Registry, authz auth.Authorizer, mailer notify.Mailer, tpl Templates) *Service {
	return &Service{store: st, reg: reg, authz: authz, mailer: mailer, tpl: tpl}
}

func ok() Result {
	return Result{Status: http.StatusOK, Message: "OK"}
}

func storeFailure(err error) Result {
	return Result{Status: http.StatusInternalServerError, Message: fmt.Sprintf("Internal Server Error: %v", err)}
}

func notFound(typ string) Result {
	return Result{Status: http.StatusNotFound, Message: fmt.Sprintf("Not Found: unknown resource type %q", typ)}
}

func authFailure(v auth.Verdict) Result {
	return Result{Status: v.Status, Message: "Authentication Error: " + v.Message}
}

// Create registers the caller for a person-type resource, or creates a
// feedback/team document. On success one confirmation notification goes to
// the caller.
func (s *Service) Create(ctx context.Context, typ string, payload map[string]any, token string) Result {
	res, known := s.reg.Lookup(typ)
	if !known {
		return notFound(typ)
	}
	v := s.authz.Authenticate(ctx, token, res.Allow[schema.VerbCreate])
	if v.Status != http.StatusOK {
		return authFailure(v)
	}
	caller := v.User
	element := s.reg.Project(typ, payload)
	now := time.Now().UTC()

	switch {
	case res.Person:
		element["timestamp"] = now
		element["roles."+typ] = 0
		if err := s.store.Update(ctx, store.Users, caller.ID, element); err != nil {
			return storeFailure(err)
		}
	case typ == "feedback":
		rating, _ := store.ToInt(payload["rating"])
		element["timestamp"] = now
		element["rating"] = rating
		element["status"] = 0
		if _, err := s.store.Add(ctx, store.Feedback, element); err != nil {
			return storeFailure(err)
		}
	case typ == "teams":
		team := map[string]any{
			"links": map[string]any{
				"github":  "",
				"devpost": "",
				"figma":   "",
			},
			"members": []any{
				map[string]any{"discord": caller.Discord, "name": caller.Name, "uid": caller.ID},
			},
			"status":    0,
			"timestamp": now,
		}
		teamID, err := s.store.Add(ctx, store.Teams, team)
		if err != nil {
			return storeFailure(err)
		}
		if err := s.store.Update(ctx, store.Users, caller.ID, map[string]any{"team": teamID}); err != nil {
			return storeFailure(err)
		}
	}

	s.fanOut(ctx, []notify.Message{{
		To:         caller.Email,
		TemplateID: s.tpl.Confirmation,
		Data:       templateData(caller.Name, typ),
	}})
	return ok()
}

// List returns every record of the resource type, whitelisted and sorted by
// timestamp descending.
func (s *Service) List(ctx context.Context, typ, token string) Result {
	res, known := s.reg.Lookup(typ)
	if !known {
		return notFound(typ)
	}
	v := s.authz.Authenticate(ctx, token, res.Allow[schema.VerbList])
	if v.Status != http.StatusOK {
		return authFailure(v)
	}

	items := []map[string]any{}
	switch {
	case res.Person:
		docs, err := s.store.Query(ctx, store.Users, store.Filter{
			Field: "roles." + typ,
			Op:    "in",
			Value: []int{-1, 0, 1},
		})
		if err != nil {
			return storeFailure(err)
		}
		for _, doc := range docs {
			item := projectItem(s.reg, typ, doc)
			if roles, ok := doc.Fields["roles"].(map[string]any); ok {
				status, _ := store.ToInt(roles[typ])
				item["status"] = status
			}
			items = append(items, item)
		}
	case res.Listable: // feedback
		docs, err := s.store.Query(ctx, store.Feedback)
		if err != nil {
			return storeFailure(err)
		}
		for _, doc := range docs {
			item := projectItem(s.reg, typ, doc)
			status, _ := store.ToInt(doc.Fields["status"])
			item["status"] = status
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return itemTime(items[i]).After(itemTime(items[j]))
	})
	return Result{Status: http.StatusOK, Message: "OK", Items: items}
}

// UpdateStatus applies a status code to every referenced document in one
// atomic batch. Person-type transitions fan out one acceptance or rejection
// notification per object after the commit succeeds.
func (s *Service) UpdateStatus(ctx context.Context, typ string, objects []Object, status int, token string) Result {
	res, known := s.reg.Lookup(typ)
	if !known {
		return notFound(typ)
	}
	v := s.authz.Authenticate(ctx, token, res.Allow[schema.VerbUpdate])
	if v.Status != http.StatusOK {
		return authFailure(v)
	}

	batch := s.store.Batch()
	var mails []notify.Message
	if res.Person {
		template := s.tpl.Rejection
		if status == 1 {
			template = s.tpl.Acceptance
		}
		for _, o := range objects {
			batch.Update(store.Users, o.UID, map[string]any{"roles." + typ: status})
			mails = append(mails, notify.Message{
				To:         o.Email,
				TemplateID: template,
				Data:       templateData(o.Name, typ),
			})
		}
	} else {
		collection := store.Feedback
		if typ == "teams" {
			collection = store.Teams
		}
		for _, o := range objects {
			batch.Update(collection, o.UID, map[string]any{"status": status})
		}
	}

	if err := batch.Commit(ctx); err != nil {
		return storeFailure(err)
	}
	s.fanOut(ctx, mails)
	return ok()
}

// Delete removes the referenced records in one atomic batch. For person
// types only the roles.<type> field is removed; the user document survives.
// Team deletion also scrubs the team back-reference from every member.
func (s *Service) Delete(ctx context.Context, typ string, uids []string, token string) Result {
	res, known := s.reg.Lookup(typ)
	if !known {
		return notFound(typ)
	}
	v := s.authz.Authenticate(ctx, token, res.Allow[schema.VerbDelete])
	if v.Status != http.StatusOK {
		return authFailure(v)
	}

	batch := s.store.Batch()
	switch {
	case res.Person:
		for _, uid := range uids {
			batch.Update(store.Users, uid, map[string]any{"roles." + typ: store.DeleteField()})
		}
	case typ == "feedback":
		for _, uid := range uids {
			batch.Delete(store.Feedback, uid)
		}
	case typ == "teams":
		for _, uid := range uids {
			members, err := s.store.Query(ctx, store.Users, store.Filter{Field: "team", Op: "==", Value: uid})
			if err != nil {
				return storeFailure(err)
			}
			for _, m := range members {
				batch.Update(store.Users, m.ID, map[string]any{"team": store.DeleteField()})
			}
			batch.Delete(store.Teams, uid)
		}
	}

	if err := batch.Commit(ctx); err != nil {
		return storeFailure(err)
	}
	return ok()
}

// fanOut delivers notifications after the primary mutation committed.
// Failures are logged and counted, never returned: a dropped email must not
// roll back an applied status change.
func (s *Service) fanOut(ctx context.Context, mails []notify.Message) {
	for _, m := range mails {
		if m.To == "" {
			continue
		}
		if err := s.mailer.Send(ctx, m); err != nil {
			logger.Errorf("notify: send to %s failed: %v", m.To, err)
			metrics.NotificationsFailed.Inc()
			continue
		}
		metrics.NotificationsSent.Inc()
	}
}

func templateData(name, typ string) map[string]string {
	return map[string]string{
		"name":     name,
		"position": schema.Position(typ),
	}
}

func projectItem(reg *schema.Registry, typ string, doc store.Document) map[string]any {
	item := reg.Project(typ, doc.Fields)
	item["uid"] = doc.ID
	item["timestamp"] = doc.Fields["timestamp"]
	// UI-transient flags the admin tables expect
	item["selected"] = false
	item["hidden"] = false
	return item
}

func itemTime(item map[string]any) time.Time {
	if ts, ok := item["timestamp"].(time.Time); ok {
		return ts
	}
	return time.Time{}
}
