package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Value input options accepted by the Sheets API
const (
	InputRaw         = "RAW"
	InputUserEntered = "USER_ENTERED"
)

// Client writes scorecard rows into Google Sheets
type Client struct {
	service    *sheets.Service
	valueInput string
}

type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
	// ValueInput defaults to InputRaw.
	ValueInput string
	// Endpoint overrides the API base URL and skips authentication.
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
		return nil, errors.New("sheets: credentials path or JSON is required")
	}
	if cfg.Endpoint == "" {
		opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	valueInput := cfg.ValueInput
	if valueInput == "" {
		valueInput = InputRaw
	}

	return &Client{service: service, valueInput: valueInput}, nil
}

// AppendValues adds rows after the last filled row of range_
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption(c.valueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", range_, err)
	}
	return nil
}

// UpdateValues overwrites the cells starting at range_
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption(c.valueInput).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", range_, err)
	}
	return nil
}

func (c *Client) ClearValues(ctx context.Context, spreadsheetID, range_ string) error {
	_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, range_, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: clear %s: %w", range_, err)
	}
	return nil
}
