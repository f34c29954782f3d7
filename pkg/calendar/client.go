package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Event is one calendar entry
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

type Client struct {
	service     *calendar.Service
	calendarID  string
	sendUpdates string
}

type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
	// CalendarID defaults to "primary".
	CalendarID string
	// SendUpdates controls attendee emails: "all", "externalOnly" or "none".
	SendUpdates string
	// Endpoint overrides the API base URL and disables authentication.
	Endpoint string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	switch {
	case cfg.Endpoint != "":
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	default:
		return nil, fmt.Errorf("calendar: credentials path or JSON is required")
	}
	if cfg.Endpoint == "" {
		opts = append(opts, option.WithScopes(calendar.CalendarEventsScope))
	}

	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to create service: %w", err)
	}

	id := cfg.CalendarID
	if id == "" {
		id = "primary"
	}

	send := cfg.SendUpdates
	if send == "" {
		send = "all"
	}

	return &Client{service: service, calendarID: id, sendUpdates: send}, nil
}

// CreateEvent inserts ev and returns the provider's event id
func (c *Client) CreateEvent(ctx context.Context, ev Event) (string, error) {
	created, err := c.service.Events.Insert(c.calendarID, toAPI(ev)).
		SendUpdates(c.sendUpdates).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent moves or retitles an existing event
func (c *Client) UpdateEvent(ctx context.Context, eventID string, ev Event) error {
	_, err := c.service.Events.Patch(c.calendarID, eventID, toAPI(ev)).
		SendUpdates(c.sendUpdates).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("calendar: patch event %s: %w", eventID, err)
	}
	return nil
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.service.Events.Delete(c.calendarID, eventID).
		SendUpdates(c.sendUpdates).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("calendar: delete event %s: %w", eventID, err)
	}
	return nil
}

func toAPI(ev Event) *calendar.Event {
	attendees := make([]*calendar.EventAttendee, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		if email == "" {
			continue
		}
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	return &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: ev.End.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		Attendees:   attendees,
	}
}
