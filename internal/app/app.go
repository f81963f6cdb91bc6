package app

// ApiAccessKey is a data type for storing the REST API access key, used for DI.
type ApiAccessKey string
