package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"net/url"

	"mariinsky-counter/lib/htmlutil"
	"mariinsky-counter/lib/restyutil"
	"mariinsky-counter/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mariinsky.platforms.mariinsky.core")

var ErrInvalidCredentials = errors.New("incorrect username or password")

// Department is a troupe section of the portal. Its values match the
// attendance categories.
type Department string

const (
	Ballet Department = "ballet"
	Extras Department = "extras"
)

// EventView is the `a` query parameter that selects which department's cast
// list an event page shows.
func (d Department) EventView() (string, error) {
	switch d {
	case Ballet:
		return "9", nil
	case Extras:
		return "11", nil
	}
	return "", fmt.Errorf("unknown department %q", d)
}

// MenuCode is the schedule filter value of the department.
func (d Department) MenuCode() (string, error) {
	switch d {
	case Ballet:
		return "3", nil
	case Extras:
		return "6", nil
	}
	return "", fmt.Errorf("unknown department %q", d)
}

const castCellSelector = `td[style="padding-left: 5px; border: 1px solid gray;"]`

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
	// CloudflareBypass wraps the transport so requests look like a browser's.
	CloudflareBypass bool
	// HttpOutput receives a dump of every exchange when non-nil.
	HttpOutput restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if baseUrl.Hostname() == "" {
		return nil, fmt.Errorf("base url %q has no host", opts.BaseUrl)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	telemetry.InstrumentResty(client, "mariinsky.platforms.mariinsky.http")
	restyutil.InstrumentClient(client, opts.HttpOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

func (c *Client) LoginUsernamePassword(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:LoginUsernamePassword")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"UserName": username,
			"Password": password,
		}).
		Post("/Account/Login")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post login request")
		return err
	}
	if res.IsError() {
		err := fmt.Errorf("login: unexpected status %s", res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return err
	}
	if doc.Find("#InputL").Length() > 0 {
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		return ErrInvalidCredentials
	}
	return nil
}

// Page posts to a portal page and parses the response.
func (c *Client) Page(ctx context.Context, path string, query, form map[string]string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetFormData(form).
		Post(path)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("%s: unexpected status %s", path, res.Status())
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// EventCells returns the cast table of an event as a flat list of cell
// texts, read left to right and top to bottom.
func (c *Client) EventCells(ctx context.Context, department Department, id string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:EventCells")
	defer span.End()
	span.SetAttributes(
		attribute.String("department", string(department)),
		attribute.String("event", id),
	)

	view, err := department.EventView()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := c.Page(ctx, fmt.Sprintf("/Home/MoreInfo/%s", url.PathEscape(id)), map[string]string{"a": view}, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch event page")
		return nil, fmt.Errorf("event %s: %w", id, err)
	}

	cells := htmlutil.GetCellTexts(doc.Find(castCellSelector))
	span.SetAttributes(attribute.Int("cells", len(cells)))
	return cells, nil
}
