// internal/connector/aws/connector.go
package aws

import (
	"context"
	"fmt"
	"time"

	"cost-optimizer/internal/common/config"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/common/metrics"
	stderrors "cost-optimizer/internal/common/errors"
	"cost-optimizer/internal/connector"
	"cost-optimizer/internal/fx"
	"cost-optimizer/internal/models"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/shopspring/decimal"
)

const providerName = "AWS"

const costDateLayout = "2006-01-02"

// costExplorerAPI is the Cost Explorer surface the connector uses.
type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// ec2API is the EC2 surface the connector uses.
type ec2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
}

// cloudWatchAPI is the CloudWatch surface the connector uses.
type cloudWatchAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// Connector implements connector.Connector for AWS using Cost Explorer,
// EC2 and CloudWatch.
type Connector struct {
	region          string
	accessKeyID     string
	secretAccessKey string

	rates  *fx.Converter
	logger logger.Logger

	cost    costExplorerAPI
	compute ec2API
	watch   cloudWatchAPI

	authenticated bool
}

// NewConnector creates an unauthenticated AWS connector.
func NewConnector(cfg config.ProvidersConfig, rates *fx.Converter, log logger.Logger) *Connector {
	return &Connector{
		region:          cfg.AWS.Region,
		accessKeyID:     cfg.AWS.AccessKeyID,
		secretAccessKey: cfg.AWS.SecretAccessKey,
		rates:           rates,
		logger:          log.WithFields(map[string]interface{}{"provider": providerName}),
	}
}

// newWithClients wires pre-built API clients; used by tests.
func newWithClients(cost costExplorerAPI, compute ec2API, watch cloudWatchAPI, rates *fx.Converter, log logger.Logger) *Connector {
	return &Connector{
		region:        "ap-south-1",
		rates:         rates,
		logger:        log,
		cost:          cost,
		compute:       compute,
		watch:         watch,
		authenticated: true,
	}
}

func (c *Connector) Name() string { return providerName }

func (c *Connector) IsAuthenticated() bool { return c.authenticated }

// Authenticate builds the SDK clients and probes Cost Explorer with a
// one-day query, mirroring the provider's connection test.
func (c *Connector) Authenticate(ctx context.Context) error {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.region),
	}
	if c.accessKeyID != "" && c.secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.accessKeyID, c.secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		c.authenticated = false
		return stderrors.NewConnectorAuthFailedError(providerName, err)
	}

	c.cost = costexplorer.NewFromConfig(awsCfg)
	c.compute = ec2.NewFromConfig(awsCfg)
	c.watch = cloudwatch.NewFromConfig(awsCfg)

	if err := c.testConnection(ctx); err != nil {
		c.authenticated = false
		return stderrors.NewConnectorAuthFailedError(providerName, err)
	}

	c.authenticated = true
	c.logger.Info("authentication successful", nil)
	return nil
}

func (c *Connector) testConnection(ctx context.Context) error {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -1)

	_, err := c.cost.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: sdkaws.String(start.Format(costDateLayout)),
			End:   sdkaws.String(end.Format(costDateLayout)),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"BlendedCost"},
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// CostData retrieves daily blended costs grouped by service and converts
// them to INR.
func (c *Connector) CostData(ctx context.Context, start, end time.Time) (*models.ProviderCosts, error) {
	if !c.authenticated {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	out, err := c.cost.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: sdkaws.String(start.Format(costDateLayout)),
			End:   sdkaws.String(end.Format(costDateLayout)),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"BlendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: sdkaws.String("SERVICE")},
		},
	})
	if err != nil {
		metrics.ConnectorCallsTotal.WithLabelValues(providerName, "cost_and_usage", "error").Inc()
		return nil, stderrors.NewCostDataUnavailableError(providerName, err)
	}
	metrics.ConnectorCallsTotal.WithLabelValues(providerName, "cost_and_usage", "success").Inc()

	totalINR := decimal.Zero
	byService := map[string]float64{}

	for _, result := range out.ResultsByTime {
		if total, ok := result.Total["BlendedCost"]; ok && total.Amount != nil {
			usd, err := decimal.NewFromString(*total.Amount)
			if err != nil {
				continue
			}
			totalINR = totalINR.Add(c.rates.USDToINR(usd))
		}

		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric, ok := group.Metrics["BlendedCost"]
			if !ok || metric.Amount == nil {
				continue
			}
			usd, err := decimal.NewFromString(*metric.Amount)
			if err != nil {
				continue
			}
			service := group.Keys[0]
			inr := c.rates.USDToINR(usd)
			byService[service] += inr.InexactFloat64()
			if total, ok := result.Total["BlendedCost"]; !ok || total.Amount == nil {
				totalINR = totalINR.Add(inr)
			}
		}
	}

	return &models.ProviderCosts{
		Provider:     providerName,
		Currency:     "INR",
		TotalCostINR: totalINR.InexactFloat64(),
		ByService:    byService,
		Period:       models.Period{Start: start, End: end},
	}, nil
}

// Inventory lists EC2 instances and EBS volumes in the region.
func (c *Connector) Inventory(ctx context.Context) ([]models.Resource, error) {
	if !c.authenticated {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	resources := []models.Resource{}

	instancesOut, err := c.compute.DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		metrics.ConnectorCallsTotal.WithLabelValues(providerName, "describe_instances", "error").Inc()
		return nil, stderrors.NewInventoryUnavailableError(providerName, err)
	}
	metrics.ConnectorCallsTotal.WithLabelValues(providerName, "describe_instances", "success").Inc()

	for _, reservation := range instancesOut.Reservations {
		for _, instance := range reservation.Instances {
			res := models.Resource{
				ID:           sdkaws.ToString(instance.InstanceId),
				Type:         models.ResourceTypeEC2,
				Provider:     providerName,
				InstanceType: string(instance.InstanceType),
				Region:       c.region,
				LaunchTime:   instance.LaunchTime,
				Tags:         map[string]string{},
			}
			if instance.State != nil {
				res.State = string(instance.State.Name)
			}
			for _, tag := range instance.Tags {
				res.Tags[sdkaws.ToString(tag.Key)] = sdkaws.ToString(tag.Value)
			}
			resources = append(resources, res)
		}
	}

	volumesOut, err := c.compute.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{})
	if err != nil {
		metrics.ConnectorCallsTotal.WithLabelValues(providerName, "describe_volumes", "error").Inc()
		return nil, stderrors.NewInventoryUnavailableError(providerName, err)
	}
	metrics.ConnectorCallsTotal.WithLabelValues(providerName, "describe_volumes", "success").Inc()

	for _, volume := range volumesOut.Volumes {
		res := models.Resource{
			ID:       sdkaws.ToString(volume.VolumeId),
			Type:     models.ResourceTypeEBS,
			Provider: providerName,
			Region:   c.region,
		}
		for _, attachment := range volume.Attachments {
			res.Attachments = append(res.Attachments, sdkaws.ToString(attachment.InstanceId))
		}
		resources = append(resources, res)
	}

	return resources, nil
}

// UtilizationMetrics fetches CPU utilization statistics from CloudWatch
// over the trailing number of days (hourly datapoints).
func (c *Connector) UtilizationMetrics(ctx context.Context, resourceID string, days int) (*models.UtilizationMetrics, error) {
	if !c.authenticated {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	out, err := c.watch.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  sdkaws.String("AWS/EC2"),
		MetricName: sdkaws.String("CPUUtilization"),
		Dimensions: []cwtypes.Dimension{
			{Name: sdkaws.String("InstanceId"), Value: sdkaws.String(resourceID)},
		},
		StartTime:  sdkaws.Time(start),
		EndTime:    sdkaws.Time(end),
		Period:     sdkaws.Int32(3600),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage, cwtypes.StatisticMaximum},
	})
	if err != nil {
		metrics.ConnectorCallsTotal.WithLabelValues(providerName, "metric_statistics", "error").Inc()
		return nil, stderrors.NewMetricsUnavailableError(resourceID, err)
	}
	metrics.ConnectorCallsTotal.WithLabelValues(providerName, "metric_statistics", "success").Inc()

	result := &models.UtilizationMetrics{
		ResourceID:   resourceID,
		PeriodDays:   days,
		AnalysisDate: end,
	}

	if len(out.Datapoints) > 0 {
		var sum, max float64
		for _, dp := range out.Datapoints {
			sum += sdkaws.ToFloat64(dp.Average)
			if m := sdkaws.ToFloat64(dp.Maximum); m > max {
				max = m
			}
		}
		result.CPUUtilization.Average = sum / float64(len(out.Datapoints))
		result.CPUUtilization.Maximum = max
	}

	return result, nil
}

// Permissions reports the scopes this connector uses. Write access is
// never requested.
func (c *Connector) Permissions(ctx context.Context) (connector.Permissions, error) {
	perms := connector.Permissions{}

	if !c.authenticated {
		if err := c.Authenticate(ctx); err != nil {
			return perms, err
		}
	}

	perms.CostRead = true
	perms.ResourceRead = true
	perms.BillingRead = true
	return perms, nil
}
