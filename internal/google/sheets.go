package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/digitaldrywood/timetracker/internal/sheetsync"
)

// SheetsClient implements sheetsync.Spreadsheet over the Google Sheets API.
type SheetsClient struct {
	service *sheets.Service
}

func NewSheetsClient(service *sheets.Service) *SheetsClient {
	return &SheetsClient{
		service: service,
	}
}

// NewSheetsClientFromHTTP builds a SheetsClient on an authenticated HTTP client.
func NewSheetsClientFromHTTP(ctx context.Context, client *http.Client) (*SheetsClient, error) {
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Sheets client: %v", err)
	}

	return NewSheetsClient(srv), nil
}

func (s *SheetsClient) Properties(ctx context.Context, spreadsheetID string) (*sheetsync.SheetProperties, error) {
	spreadsheet, err := s.service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apiError("unable to retrieve spreadsheet properties", err)
	}

	if len(spreadsheet.Sheets) == 0 || spreadsheet.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("%w: spreadsheet %s has no worksheets", sheetsync.ErrRemoteAPI, spreadsheetID)
	}

	p := spreadsheet.Sheets[0].Properties
	props := sheetsync.SheetProperties{
		SheetID: p.SheetId,
		Title:   p.Title,
	}
	if p.GridProperties != nil {
		props.RowCount = p.GridProperties.RowCount
	}

	return &props, nil
}

func (s *SheetsClient) Values(ctx context.Context, spreadsheetID, area string) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, area).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apiError("unable to retrieve data from sheet", err)
	}

	return resp.Values, nil
}

func (s *SheetsClient) BatchUpdateValues(ctx context.Context, spreadsheetID string, data []sheetsync.ValueRange) error {
	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             make([]*sheets.ValueRange, 0, len(data)),
	}

	for _, d := range data {
		rq.Data = append(rq.Data, &sheets.ValueRange{
			Range:  d.Range,
			Values: d.Values,
		})
	}

	if _, err := s.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return apiError("unable to update sheet values", err)
	}

	return nil
}

func (s *SheetsClient) InsertRows(ctx context.Context, spreadsheetID string, sheetID, startIndex, count int64) error {
	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				InsertDimension: &sheets.InsertDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:         sheetID,
						Dimension:       "ROWS",
						StartIndex:      startIndex,
						EndIndex:        startIndex + count,
						ForceSendFields: []string{"SheetId", "StartIndex"},
					},
					InheritFromBefore: true,
				},
			},
		},
	}

	if _, err := s.service.Spreadsheets.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return apiError(fmt.Sprintf("unable to insert %d rows at row %d", count, startIndex+1), err)
	}

	return nil
}

// apiError classifies a failed API call. Token refresh failures surface on
// the first call made with a direct credential, and a revoked or expired
// access token comes back as 401. Both are authentication errors.
func apiError(msg string, err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		return fmt.Errorf("%w: %s: %w", sheetsync.ErrAuthentication, msg, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s: %w", sheetsync.ErrAuthentication, msg, err)
	}

	return fmt.Errorf("%w: %s: %w", sheetsync.ErrRemoteAPI, msg, err)
}
