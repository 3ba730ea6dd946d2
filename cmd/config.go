package cmd

type Config struct {
	HTTPPort            string
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	DBSslMode           string
	RabbitMQURL         string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	SESSenderAddress    string
	CommissionRate      string
	PrepEstimateMin     string
	DeliveryEstimateMin string
}
