package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gridpoint/facilitymap-core/internal/asset"
	"github.com/gridpoint/facilitymap-core/internal/mapview"
)

// AssetsForLocation fetches the flat asset list placed under a
// location. Callers treat a failed request as an empty asset set.
func (c *Client) AssetsForLocation(ctx context.Context, locationPath string) ([]asset.Asset, error) {
	url := c.url(c.cfg.Endpoints.Assets, "") + "/location/" + locationPath
	var assets []asset.Asset
	if err := c.getJSON(ctx, url, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// CreateAsset posts a new asset and returns the backend's view of it,
// assetId assigned.
func (c *Client) CreateAsset(ctx context.Context, a asset.Asset) (asset.Asset, error) {
	var created asset.Asset
	err := c.sendJSON(ctx, http.MethodPost, c.url(c.cfg.Endpoints.Assets, ""), a, &created)
	if err != nil {
		return asset.Asset{}, err
	}
	return created, nil
}

// propertyKV is the backend's key/value patch entry for asset updates.
type propertyKV struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// UpdateAsset patches an asset's dynamic properties.
func (c *Client) UpdateAsset(ctx context.Context, assetID int, props map[string]string) error {
	body := struct {
		Properties []propertyKV `json:"properties"`
	}{Properties: make([]propertyKV, 0, len(props))}
	for k, v := range props {
		body.Properties = append(body.Properties, propertyKV{Key: k, Value: v})
	}

	url := c.url(c.cfg.Endpoints.Assets, "") + "/" + strconv.Itoa(assetID)
	return c.sendJSON(ctx, http.MethodPut, url, body, nil)
}

// UpdateAssetPosition moves an asset to a new coordinate.
func (c *Client) UpdateAssetPosition(ctx context.Context, assetID int, pos asset.Position) error {
	body := struct {
		Position asset.Position `json:"position"`
	}{Position: pos}

	url := c.url(c.cfg.Endpoints.Assets, "") + "/" + strconv.Itoa(assetID)
	return c.sendJSON(ctx, http.MethodPut, url, body, nil)
}

// DeleteAsset removes an asset.
func (c *Client) DeleteAsset(ctx context.Context, assetID int) error {
	url := c.url(c.cfg.Endpoints.Assets, "") + "/" + strconv.Itoa(assetID)
	return c.sendJSON(ctx, http.MethodDelete, url, nil, nil)
}

// AssetTypes fetches the creatable asset type list.
func (c *Client) AssetTypes(ctx context.Context) ([]asset.TypeInfo, error) {
	var types []asset.TypeInfo
	if err := c.getJSON(ctx, c.url(c.cfg.Endpoints.AssetTypes, ""), &types); err != nil {
		return nil, err
	}
	return types, nil
}

// AssetTypeProps fetches the dynamic property definitions for one asset
// type.
func (c *Client) AssetTypeProps(ctx context.Context, typeID int) ([]asset.PropDef, error) {
	url := fmt.Sprintf("%s/%d", c.url(c.cfg.Endpoints.AssetTypeProps, ""), typeID)
	var defs []asset.PropDef
	if err := c.getJSON(ctx, url, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// AssetIcons fetches the glyph catalogue used by the asset layer.
func (c *Client) AssetIcons(ctx context.Context) ([]mapview.Icon, error) {
	var icons []mapview.Icon
	if err := c.getJSON(ctx, c.url(c.cfg.Endpoints.AssetIcons, ""), &icons); err != nil {
		return nil, err
	}
	return icons, nil
}
