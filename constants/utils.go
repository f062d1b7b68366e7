package constants

// provider service endpoint names
const (
	EndpointNonce         = "nonce"
	EndpointComputeStart  = "computeStart"
	EndpointFreeCompute   = "freeCompute"
	EndpointComputeStatus = "computeStatus"
	EndpointComputeStop   = "computeStop"
)

// FreeEnvironmentMarker tags a compute environment id as a free tier.
const FreeEnvironmentMarker = "-free"

const DefaultRepoPath = "~/.swan/compute"
const RepoEnv = "COMPUTE_PATH"
const PrivateKeyEnv = "PRIVATE_KEY"

const JobStoreRepo = "jobs"
const JOB_KEY_PREFIX = "job:"

const JobSpecVersion = "1.0"
