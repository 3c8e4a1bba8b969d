package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

type Client struct {
	client *api.Client
}

func NewClient(address, token string) (*Client, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &Client{client: client}, nil
}

// Ping checks that the server answers before any walk begins.
func (c *Client) Ping() error {
	if _, err := c.client.Sys().Health(); err != nil {
		return fmt.Errorf("vault is unreachable: %w", err)
	}
	return nil
}

// List returns the immediate child names under a directory-like path.
// Names ending in "/" are sub-directories. A 404 from the list endpoint
// means the path has no children.
func (c *Client) List(path string) ([]string, error) {
	resp, err := c.client.Logical().List(path)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Data == nil {
		return nil, nil
	}

	keys, ok := resp.Data["keys"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected list response at %s", path)
	}

	var children []string
	for _, key := range keys {
		if name, ok := key.(string); ok {
			children = append(children, name)
		}
	}
	return children, nil
}

// Read fetches the value of a leaf secret.
func (c *Client) Read(path string) (map[string]interface{}, error) {
	resp, err := c.client.Logical().Read(path)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Data == nil {
		return nil, fmt.Errorf("no secret at %s", path)
	}
	return resp.Data, nil
}

// Delete removes a leaf secret.
func (c *Client) Delete(path string) error {
	_, err := c.client.Logical().Delete(path)
	return err
}

func (c *Client) ListPolicies() ([]string, error) {
	policies, err := c.client.Sys().ListPolicies()
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	return policies, nil
}

func (c *Client) GetPolicy(name string) (string, error) {
	policy, err := c.client.Sys().GetPolicy(name)
	if err != nil {
		return "", fmt.Errorf("failed to read policy %q: %w", name, err)
	}
	if policy == "" {
		return "", fmt.Errorf("policy %q not found", name)
	}
	return policy, nil
}

func (c *Client) PutPolicy(name, rules string) error {
	if err := c.client.Sys().PutPolicy(name, rules); err != nil {
		return fmt.Errorf("failed to write policy %q: %w", name, err)
	}
	return nil
}
