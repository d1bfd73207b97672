package ledger

// marketplaceABI is the subset of the marketplace contract used by the service.
const marketplaceABI = `[
  {"type":"function","name":"isRegistered","stateMutability":"view",
   "inputs":[{"name":"docHash","type":"string"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"registerDocumentHash","stateMutability":"nonpayable",
   "inputs":[{"name":"docHash","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"createListing","stateMutability":"nonpayable",
   "inputs":[{"name":"listingId","type":"uint256"},{"name":"priceWei","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"listings","stateMutability":"view",
   "inputs":[{"name":"","type":"uint256"}],
   "outputs":[{"name":"owner","type":"address"},{"name":"priceWei","type":"uint256"},{"name":"sold","type":"bool"}]}
]`
