package entity

// StablecoinDefinition names one candidate stablecoin for reference price
// discovery. Decimals must be carried per coin: bridged USDC/USDT use 6,
// DAI uses 18.
type StablecoinDefinition struct {
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals uint8  `yaml:"decimals"`
}

// ChainDefinition holds the static on-chain landscape the engine prices
// against. FactoryAddresses are ordered oldest to newest; price resolution
// depends on that order.
type ChainDefinition struct {
	ChainID              uint64                 `yaml:"chainId"`
	Name                 string                 `yaml:"name"`
	RPCEndpoints         []string               `yaml:"rpcEndpoints"`
	WrappedNativeAddress string                 `yaml:"wrappedNativeAddress"`
	WrappedNativeSymbol  string                 `yaml:"wrappedNativeSymbol"`
	FactoryAddresses     []string               `yaml:"factoryAddresses"`
	Stablecoins          []StablecoinDefinition `yaml:"stablecoins"`
}
