package client

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "workitem-resolver-backend/internal/errors"
)

// workItemFields is the field selection requested on every work item lookup.
const workItemFields = "id,title,type,author,status,description,project"

// PolarionClient handles communication with the Polarion REST API. The
// Authorization header is resolved once at construction and applied to
// every request.
type PolarionClient struct {
	BaseURL    string
	HTTPClient *http.Client

	authHeader string
}

// NewPolarionClient creates a client bound to baseURL. The base URL may or
// may not already carry a trailing /polarion segment; both forms work.
func NewPolarionClient(baseURL, authHeader string, timeout time.Duration) *PolarionClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PolarionClient{
		BaseURL:    normalizeBaseURL(baseURL),
		authHeader: authHeader,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// normalizeBaseURL strips trailing slashes and a trailing /polarion segment
// so that REST paths and the public item URL can both be derived without
// duplicating the segment.
func normalizeBaseURL(baseURL string) string {
	b := strings.TrimSuffix(baseURL, "/")
	b = strings.TrimSuffix(b, "/polarion")
	return b
}

func (c *PolarionClient) restURL(path string) string {
	return c.BaseURL + "/polarion/rest/v1" + path
}

// ItemURL builds the public, browser-facing URL for a work item.
func (c *PolarionClient) ItemURL(projectID, itemID string) string {
	return fmt.Sprintf("%s/polarion/#/project/%s/workitem?id=%s", c.BaseURL, projectID, url.QueryEscape(itemID))
}

// get issues an authenticated GET and returns the raw body. Status handling
// follows the resolver error taxonomy: 404 maps to NotFoundError, 401/403
// to AuthenticationError, anything else non-2xx to TransportError.
func (c *PolarionClient) get(operation, fullURL string, notFound error) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, apperrors.NewTransportError(operation, err)
	}
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(operation, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.ErrForbidden
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(resp.Body)
		return nil, apperrors.NewTransportError(operation,
			fmt.Errorf("tracking service returned status %d: %s", resp.StatusCode, string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError(operation, err)
	}

	return body, nil
}

// Probe issues the lightweight connectivity check used during session
// initialization.
func (c *PolarionClient) Probe() error {
	_, err := c.get("connectivity probe", c.restURL("/projects"), apperrors.NewNotFoundError("projects listing"))
	return err
}

// QueryWorkItem looks a work item up across all projects by its identifier.
// When the service returns a collection, the first match wins.
func (c *PolarionClient) QueryWorkItem(itemID string) (*WorkItemRecord, error) {
	q := url.Values{}
	q.Set("query", "id:"+itemID)
	q.Set("fields[workitems]", workItemFields)

	fullURL := c.restURL("/all/workitems") + "?" + q.Encode()

	body, err := c.get("work item query", fullURL, apperrors.ErrWorkItemNotFound)
	if err != nil {
		return nil, err
	}

	record, err := parseWorkItemResponse(body)
	if err != nil {
		return nil, apperrors.NewTransportError("work item query", err)
	}
	if record == nil {
		return nil, apperrors.ErrWorkItemNotFound
	}

	return record, nil
}

// GetWorkItem looks a work item up inside a single project (the
// scoped-session variant of the lookup).
func (c *PolarionClient) GetWorkItem(projectID, itemID string) (*WorkItemRecord, error) {
	q := url.Values{}
	q.Set("fields[workitems]", workItemFields)

	fullURL := c.restURL(fmt.Sprintf("/projects/%s/workitems/%s", url.PathEscape(projectID), url.PathEscape(itemID))) + "?" + q.Encode()

	body, err := c.get("work item get", fullURL, apperrors.ErrWorkItemNotFound)
	if err != nil {
		return nil, err
	}

	record, err := parseWorkItemResponse(body)
	if err != nil {
		return nil, apperrors.NewTransportError("work item get", err)
	}
	if record == nil {
		return nil, apperrors.ErrWorkItemNotFound
	}

	if record.ProjectID == "" {
		record.ProjectID = projectID
	}

	return record, nil
}

// GetStatusOptions fetches the valid status options for a project/type pair.
func (c *PolarionClient) GetStatusOptions(projectID, typeID string) ([]EnumOption, error) {
	q := url.Values{}
	q.Set("type", typeID)

	fullURL := c.restURL(fmt.Sprintf("/projects/%s/workitems/fields/status/actions/getAvailableOptions", url.PathEscape(projectID))) + "?" + q.Encode()

	body, err := c.get("status options", fullURL, apperrors.NewNotFoundError("status options"))
	if err != nil {
		return nil, err
	}

	options, err := parseEnumOptions(body)
	if err != nil {
		return nil, apperrors.NewTransportError("status options", err)
	}

	return options, nil
}

// GetTypeOptions fetches the project's work-item-type enumeration.
func (c *PolarionClient) GetTypeOptions(projectID string) ([]EnumOption, error) {
	fullURL := c.restURL(fmt.Sprintf("/projects/%s/enumerations/~/workitem-type/~", url.PathEscape(projectID)))

	body, err := c.get("type enumeration", fullURL, apperrors.NewNotFoundError("type enumeration"))
	if err != nil {
		return nil, err
	}

	options, err := parseEnumOptions(body)
	if err != nil {
		return nil, apperrors.NewTransportError("type enumeration", err)
	}

	return options, nil
}

// GetUser fetches display data for a user id.
func (c *PolarionClient) GetUser(userID string) (*UserRecord, error) {
	q := url.Values{}
	q.Set("fields[users]", "id,name,email,initials")

	fullURL := c.restURL("/users/"+url.PathEscape(userID)) + "?" + q.Encode()

	body, err := c.get("user lookup", fullURL, apperrors.ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	user, err := parseUserResponse(body)
	if err != nil {
		return nil, apperrors.NewTransportError("user lookup", err)
	}

	return user, nil
}

// DownloadAttachment fetches the binary content of a work item attachment
// through the project-scoped endpoint.
func (c *PolarionClient) DownloadAttachment(projectID, itemID, attachmentID string) ([]byte, error) {
	fullURL := c.restURL(fmt.Sprintf("/projects/%s/workitems/%s/attachments/%s/content",
		url.PathEscape(projectID), url.PathEscape(itemID), url.PathEscape(attachmentID)))

	return c.get("attachment download", fullURL, apperrors.ErrAttachmentNotFound)
}

// DownloadBinary fetches an arbitrary binary resource (status and type
// icons). Relative URLs are resolved against the service base.
func (c *PolarionClient) DownloadBinary(resource string) ([]byte, error) {
	fullURL := resource
	if !strings.HasPrefix(resource, "http://") && !strings.HasPrefix(resource, "https://") {
		fullURL = c.BaseURL + "/" + strings.TrimPrefix(resource, "/")
	}

	return c.get("binary download", fullURL, apperrors.ErrIconNotFound)
}
