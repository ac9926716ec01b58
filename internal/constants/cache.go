package constants

// Ключ, под которым в кэше лежит рабочий набор целиком
const WorkingSetCacheKey = "listings:working-set"
