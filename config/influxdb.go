package config

import (
	"os"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"
)

var InfluxDB *InfluxClient

type InfluxClient struct {
	client   client.Client
	database string
}

// NewInfluxDB connects the metrics sink. It stays nil when INFLUXDB_URL is
// unset and every write becomes a no-op.
func NewInfluxDB() error {
	addr := os.Getenv("INFLUXDB_URL")
	if addr == "" {
		return nil
	}

	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     addr,
		Username: os.Getenv("INFLUXDB_USERNAME"),
		Password: os.Getenv("INFLUXDB_PASSWORD"),
	})
	if err != nil {
		return err
	}

	InfluxDB = &InfluxClient{
		client:   c,
		database: GetEnv("INFLUXDB_DATABASE", "powermatch"),
	}

	return nil
}

func (c *InfluxClient) NewBatchPoints() (client.BatchPoints, error) {
	return client.NewBatchPoints(client.BatchPointsConfig{
		Database:  c.database,
		Precision: "ns",
	})
}

func (c *InfluxClient) NewPoint(name string, tags map[string]string, fields map[string]interface{}) {
	if c == nil {
		return
	}

	bp, err := c.NewBatchPoints()
	if err != nil {
		Logger.Errorf("Failed to create new batch point %v", err.Error())
		return
	}

	point, err := client.NewPoint(name, tags, fields, time.Now())
	if err != nil {
		Logger.Errorf("Error %v", err.Error())
		return
	}

	bp.AddPoint(point)

	if err := c.client.Write(bp); err != nil {
		Logger.Errorf("Error %v", err.Error())
	}
}

func (c *InfluxClient) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
